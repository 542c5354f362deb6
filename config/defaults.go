package config

import "time"

const (
	// DefaultBaseURL is the users API the built-in suite is written for
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	// DefaultSheet is the data sheet read by data-driven cases
	DefaultSheet = "Sheet1"
	// DefaultReportDir is where report artifacts are written
	DefaultReportDir = "reports"
	// DefaultApplication is the application label shown in reports
	DefaultApplication = "ReqRes API"
	// DefaultEnvironment is the environment label shown in reports
	DefaultEnvironment = "QA"
	// DefaultRequestTimeout bounds a single HTTP request
	DefaultRequestTimeout = time.Second * 10
	// DefaultStepTimeout bounds a single step, including any retries inside the client
	DefaultStepTimeout = time.Second * 30
	// DefaultWaitTimeout is how long to wait for the API to answer before running
	DefaultWaitTimeout = time.Second * 10
	// DefaultConcurrency runs cases one at a time
	DefaultConcurrency = 1
	// DefaultEnvFile is loaded if present
	DefaultEnvFile = ".env"
	// DefaultMockPort is the port of the mock users API
	DefaultMockPort = 8111
)

// DefaultFormats are the report artifacts written after a run
var DefaultFormats = []string{FormatJSON, FormatXLSX}

// Report formats
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Names of the environment variables read by Load
const (
	EnvBaseURL        = "CRUD_BASE_URL"
	EnvDataFile       = "CRUD_DATA_FILE"
	EnvSheet          = "CRUD_SHEET"
	EnvSuiteFile      = "CRUD_SUITE"
	EnvReportDir      = "CRUD_REPORT_DIR"
	EnvFormats        = "CRUD_REPORT_FORMATS"
	EnvApplication    = "CRUD_APPLICATION"
	EnvEnvironment    = "CRUD_ENVIRONMENT"
	EnvRequestTimeout = "CRUD_REQUEST_TIMEOUT"
	EnvStepTimeout    = "CRUD_STEP_TIMEOUT"
	EnvConcurrency    = "CRUD_CONCURRENCY"
	EnvAuthToken      = "CRUD_AUTH_TOKEN"
)
