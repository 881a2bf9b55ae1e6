package ir

// ToolVersion is the revline release version, reported by --version.
const ToolVersion = "0.1.0"
