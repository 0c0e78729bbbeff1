/*
Package executor launches bind commands.

# Overview

Commands are run as `<shell> -c <command>` and are never waited on by the
caller: Run returns as soon as the process has started. A background
goroutine reaps the process and logs a non-zero exit at debug level.

# Error Handling

  - Launch errors (fork/exec failures) are returned from Run; the dispatcher
    logs them and keeps going
  - Check reports a missing shell at startup, which is fatal for the daemon

# Example Usage

	runner := executor.NewRunner("sh", logger)
	if err := runner.Check(); err != nil {
		return err
	}
	_ = runner.Run("notify-send hello")
*/
package executor
