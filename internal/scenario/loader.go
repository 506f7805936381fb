package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// Error code constants for scenario loading.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeDecode      = "E007" // Scenario decode failed
	ErrCodeInvalid     = "E101" // Scenario validation failed
)

// LoadError represents an error that occurred during scenario loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadMode controls how errors are handled during scenario loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Load reads and compiles a scenario from a directory of CUE files,
// stopping at the first error. The files must define a top-level
// `scenario` struct.
func Load(dir string) (*Scenario, error) {
	s, errs := LoadScenario(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return s, nil
}

// LoadScenario reads and compiles a scenario from a directory of CUE
// files. In LoadModeCollectAll every validation problem is returned,
// not just the first; errors before the scenario decodes (missing
// directory, unparsable CUE) are fatal in either mode since nothing
// downstream can proceed.
func LoadScenario(dir string, mode LoadMode) (*Scenario, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("scenario directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing scenario directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	// Package "_" loads files without a package clause; scenario
	// directories are plain CUE files, not a named package.
	cfg := &load.Config{Dir: dir, Package: "_"}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	return CompileScenario(value, mode)
}

// Compile extracts the `scenario` struct from a CUE value, stopping at
// the first error. Exposed separately so tests can compile scenarios
// from strings.
func Compile(value cue.Value) (*Scenario, error) {
	s, errs := CompileScenario(value, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return s, nil
}

// CompileScenario extracts and validates the `scenario` struct from a
// CUE value. In LoadModeCollectAll all validation problems are
// returned together as positional LoadErrors.
func CompileScenario(value cue.Value, mode LoadMode) (*Scenario, []error) {
	scenVal := value.LookupPath(cue.ParsePath("scenario"))
	if !scenVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeDecode, Message: "no `scenario` struct found", Pos: value.Pos()}}
	}
	if err := scenVal.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("scenario value: %v", err), Pos: scenVal.Pos()}}
	}

	s := &Scenario{}
	if err := scenVal.Decode(s); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding scenario: %v", err), Pos: scenVal.Pos()}}
	}

	var errs []error
	for _, err := range s.problems() {
		errs = append(errs, &LoadError{Code: ErrCodeInvalid, Message: err.Error(), Pos: scenVal.Pos()})
		if mode == LoadModeFailFast {
			break
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return s, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
