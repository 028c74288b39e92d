// Package diff compares test output against golden files under testdata/.
//
// A golden lives at <path>.exp<ext>. Output is written to <path>.got<ext>, diffed
// with git and removed when it matches. A missing golden is recorded from the
// output. Set $TESTDATA_ACCEPT to overwrite goldens that differ.
package diff

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"oss.terrastruct.com/diff"
	"oss.terrastruct.com/xjson"
)

func Testdata(path, fileExtension string, got []byte) (err error) {
	expPath := fmt.Sprintf("%s.exp%s", path, fileExtension)
	gotPath := fmt.Sprintf("%s.got%s", path, fileExtension)

	err = os.MkdirAll(filepath.Dir(gotPath), 0755)
	if err != nil {
		return err
	}

	_, err = os.Stat(expPath)
	if errors.Is(err, os.ErrNotExist) {
		return ioutil.WriteFile(expPath, got, 0644)
	}
	if err != nil {
		return err
	}

	err = ioutil.WriteFile(gotPath, got, 0600)
	if err != nil {
		return err
	}

	ds, err := diff.Files(expPath, gotPath)
	if err != nil {
		return err
	}

	if ds != "" {
		if os.Getenv("TESTDATA_ACCEPT") != "" {
			return os.Rename(gotPath, expPath)
		}
		return fmt.Errorf("diff (rerun with $TESTDATA_ACCEPT=1 to accept):\n%s", ds)
	}
	return os.Remove(gotPath)
}

// TestdataJSON is Testdata for the indented JSON encoding of got.
func TestdataJSON(path string, got interface{}) error {
	return Testdata(path, ".json", []byte(xjson.MarshalIndent(got)+"\n"))
}
