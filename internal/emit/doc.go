// Package emit is the text-emission target: instead of touching a database
// it writes the statements a session would run, framed as one SQL script.
//
// Output shape:
//
//	-- revline offline script
//	-- upgrade <base> -> r2
//	BEGIN;
//
//	CREATE TABLE IF NOT EXISTS revline_version (...);
//
//	-- Running upgrade <base> -> r1
//
//	CREATE TABLE widgets (...);
//
//	INSERT INTO revline_version (version_num) VALUES ('r1');
//
//	COMMIT;
//
// Each step is buffered and written on Commit, so a step whose payload fails
// leaves no partial text behind.
package emit
