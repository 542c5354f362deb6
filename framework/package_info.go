// Package framework contains the test orchestration engine that can be reused for different
// remote resources.
//
// The general model is:
//
// 1. A suite is an ordered list of TestCases. Each TestCase is an ordered list of Steps, and
// each Step is one HTTP interaction (create, read, update, delete or list) against the
// resource under test, followed by a list of Assertions on the result.
//
// 2. Step inputs are resolved at run time: literal values, values read from a tabular
// DataSource (a spreadsheet), or fixtures published by earlier Steps.
//
// 3. The CaseRunner turns every Step into exactly one StepOutcome, even if the call could not
// be made or the Step was skipped. The SuiteDriver sequences the TestCases and hands all
// outcomes to a ReportSink, which seals them into a Report at the end of the run.
//
// The domain-specific code that knows what is being tested is responsible for providing
// the EndpointClient that talks to the remote resource and the suite definition itself.
package framework
