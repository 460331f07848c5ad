package envelope

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestOK(t *testing.T) {
	r := OK(map[string]string{"id": "1"})
	if !r.Success {
		t.Error("expected success")
	}
	if r.Message != "" || r.Error != "" {
		t.Error("expected empty message and error")
	}
}

func TestFailErr(t *testing.T) {
	r := FailErr("could not save", errors.New("boom"))
	if r.Success {
		t.Error("expected failure")
	}
	if r.Message != "could not save" || r.Error != "boom" {
		t.Errorf("unexpected envelope: %+v", r)
	}
}

func TestFail_JSONOmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(Fail("not found"))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["data"]; ok {
		t.Error("expected data to be omitted")
	}
	if _, ok := m["error"]; ok {
		t.Error("expected error to be omitted")
	}
	if m["success"] != false {
		t.Error("expected success=false")
	}
}
