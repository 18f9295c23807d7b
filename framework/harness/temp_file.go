package harness

import (
	"encoding/json"
	"os"
)

const configFilePattern = "http-cli-contract-tests-*.json"

// WriteTempConfig serializes a client configuration to a new, uniquely named temporary file.
// It returns the file's path and a function that deletes the file.
func WriteTempConfig(config interface{}) (string, func(), error) {
	data, err := json.Marshal(config)
	if err != nil {
		return "", nil, &HarnessError{Op: "serialize client configuration", Err: err}
	}
	return WriteTempFile(configFilePattern, data)
}

// WriteTempFile writes data to a new temporary file whose name follows the os.CreateTemp
// pattern. It returns the file's path and a function that deletes the file.
func WriteTempFile(pattern string, data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, &HarnessError{Op: "create temporary file", Err: err}
	}
	path := f.Name()
	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", nil, &HarnessError{Op: "write temporary file " + path, Err: err}
	}
	return path, func() { _ = os.Remove(path) }, nil
}
