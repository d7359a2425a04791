package workflow

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/flowcanvas/pkg/errors"
)

// ReadJSON decodes a serialized workflow from r.
//
// ReadJSON only fails on text that is not valid JSON or not an object
// ([errors.ErrCodeMalformedInput]). Whether the node list is usable is
// decided later by the graph importer. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Workflow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read workflow")
	}
	return Parse(data)
}

// Parse decodes a serialized workflow from raw JSON bytes.
func Parse(data []byte) (*Workflow, error) {
	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode workflow")
	}
	return &wf, nil
}

// WriteJSON encodes wf as indented JSON and writes it to w.
func WriteJSON(wf *Workflow, w io.Writer) error {
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode workflow")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ImportFile reads a serialized workflow from the file at path.
func ImportFile(path string) (*Workflow, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ExportFile writes wf to a JSON file at path.
func ExportFile(wf *Workflow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(wf, f)
}
