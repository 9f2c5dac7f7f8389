package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"elsa-proficiency-test/internal/domain"
)

func TestReferenceCatalog(t *testing.T) {
	c, err := Reference()
	if err != nil {
		t.Fatalf("reference catalog: %v", err)
	}
	if c.ID != ReferenceID {
		t.Fatalf("expected id %q, got %q", ReferenceID, c.ID)
	}

	wantOrder := []string{"vocabulary", "grammar", "reading", "listening", "writing", "speaking"}
	if len(c.Sections) != len(wantOrder) {
		t.Fatalf("expected %d sections, got %d", len(wantOrder), len(c.Sections))
	}
	for i, id := range wantOrder {
		if c.Sections[i].ID != id {
			t.Fatalf("section %d: expected %s, got %s", i, id, c.Sections[i].ID)
		}
	}
	if c.MaxTotal() != 56 {
		t.Fatalf("expected max total 56, got %d", c.MaxTotal())
	}

	locked := map[string]bool{"listening": true, "writing": true, "speaking": true}
	for _, s := range c.Sections {
		if s.CanReturnLater == locked[s.ID] {
			t.Fatalf("section %s: unexpected canReturnLater=%v", s.ID, s.CanReturnLater)
		}
	}

	reading := c.Sections[2]
	if reading.Payload() != domain.PayloadClosed || reading.Questions[0].Kind != domain.QuestionReading || reading.Questions[2].Passage == "" {
		t.Fatalf("reading questions should carry a passage: %+v", reading.Questions[0])
	}
	listening := c.Sections[3]
	if listening.Questions[0].AudioDuration != 30 {
		t.Fatalf("expected audio duration 30, got %d", listening.Questions[0].AudioDuration)
	}
	speaking := c.Sections[5]
	if speaking.Payload() != domain.PayloadOpen || speaking.Prompt.TimeLimit != 60 {
		t.Fatalf("unexpected speaking section: %+v", speaking.Prompt)
	}
}

func TestValidateMissingPayload(t *testing.T) {
	c := mustReference(t)
	c.Sections[1].Questions = nil

	err := Validate(c)
	if !errors.Is(err, domain.ErrMissingPayload) {
		t.Fatalf("expected missing payload error, got %v", err)
	}
}

func TestValidateAmbiguousPayload(t *testing.T) {
	c := mustReference(t)
	c.Sections[0].Prompt = &domain.OpenPrompt{ID: "x", Kind: domain.PromptWriting, Points: 4}

	if err := Validate(c); !errors.Is(err, domain.ErrAmbiguousPayload) {
		t.Fatalf("expected ambiguous payload error, got %v", err)
	}
}

func TestValidateDeclaredTotalMustMatchItems(t *testing.T) {
	c := mustReference(t)
	c.Sections[0].TotalPoints = 40

	err := Validate(c)
	if !errors.Is(err, domain.ErrTotalMismatch) {
		t.Fatalf("expected total mismatch, got %v", err)
	}
}

func TestValidateQuestionKinds(t *testing.T) {
	c := mustReference(t)
	c.Sections[2].Questions[1].Passage = ""
	if err := Validate(c); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question for reading without passage, got %v", err)
	}

	c = mustReference(t)
	c.Sections[0].Questions[0].CorrectAnswer = 4
	if err := Validate(c); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question for bad correct index, got %v", err)
	}

	c = mustReference(t)
	c.Sections[5].Prompt.TimeLimit = 0
	if err := Validate(c); !errors.Is(err, domain.ErrInvalidPrompt) {
		t.Fatalf("expected invalid prompt, got %v", err)
	}
}

func TestValidateBandsCoverAchievableRange(t *testing.T) {
	c := mustReference(t)
	c.Levels[5].MaxScore = 55

	if err := Validate(c); !errors.Is(err, domain.ErrInvalidBands) {
		t.Fatalf("expected band error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, referenceYAML, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}

	if err := os.WriteFile(path, []byte("sections: [}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func mustReference(t *testing.T) domain.Catalog {
	t.Helper()
	c, err := Reference()
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	return c
}

func TestFullBankCatalog(t *testing.T) {
	c, err := FullBank()
	if err != nil {
		t.Fatalf("full bank: %v", err)
	}
	if c.ID != FullBankID {
		t.Fatalf("expected id %q, got %q", FullBankID, c.ID)
	}
	if n := len(c.Sections[0].Questions); n != 11 {
		t.Fatalf("expected 11 vocabulary questions, got %d", n)
	}
	if n := len(c.Sections[1].Questions); n != 11 {
		t.Fatalf("expected 11 grammar questions, got %d", n)
	}
	if c.MaxTotal() != 176 {
		t.Fatalf("expected max total 176, got %d", c.MaxTotal())
	}
	if last := c.Levels[len(c.Levels)-1]; last.Level != "C2" || last.MaxScore != 176 {
		t.Fatalf("expected bands to end at C2 176, got %+v", last)
	}
}

func TestBuiltin(t *testing.T) {
	for _, id := range BuiltinIDs() {
		c, ok, err := Builtin(id)
		if !ok || err != nil {
			t.Fatalf("builtin %s: ok=%v err=%v", id, ok, err)
		}
		if c.ID != id {
			t.Fatalf("builtin %s decoded as %s", id, c.ID)
		}
	}
	if _, ok, _ := Builtin("catalog.yaml"); ok {
		t.Fatalf("expected unknown builtin")
	}
}
