package framework

// TestLogger receives progress notifications while a suite runs. With concurrency enabled,
// calls for different cases may arrive from different goroutines.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, outcome StepOutcome, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                               {}
func (n nullTestLogger) TestError(TestID, error)                          {}
func (n nullTestLogger) TestFinished(TestID, StepOutcome, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                       {}
