package registry

import (
	"strings"
	"testing"
)

const testCatalogYAML = `
types:
  - type: pulse
    displayName: Pulse
    category: source
    archetype: single-io
    inputs: 1
    outputs: 1
    defaultParam: 1
  - type: decay
    displayName: Decay
    category: effect
    archetype: single-io-control
    inputs: 1
    outputs: 1
    controlPorts: 1
    defaultParam: 1
    paramMap:
      targetKey: end
      mapping: decayTable
  - type: level
    displayName: Level
    category: modifier
    archetype: single-io
    inputs: 1
    outputs: 1
    controlOutput: true
    defaultParam: 1
`

func TestLoadCatalogYAMLDecodesMetadata(t *testing.T) {
	defs, err := LoadCatalogYAML(strings.NewReader(testCatalogYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(defs))
	}

	if defs[0].Type != "pulse" || defs[0].Archetype != SingleIO {
		t.Errorf("unexpected first entry %+v", defs[0])
	}
	if defs[1].ParamMap == nil || defs[1].ParamMap.Mapping != "decayTable" || defs[1].ParamMap.TargetKey != "end" {
		t.Errorf("expected the decay paramMap to survive decoding, got %+v", defs[1].ParamMap)
	}
	if !defs[2].ControlOutput {
		t.Errorf("expected level to decode controlOutput")
	}
	if defs[0].OnSignal != nil {
		t.Errorf("a YAML catalog must not invent behaviors")
	}
}

func TestAttachBehaviorsThenBuild(t *testing.T) {
	defs, err := LoadCatalogYAML(strings.NewReader(testCatalogYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	passThrough := func(ctx BehaviorCtx) SignalResult {
		return SignalResult{Outputs: []OutputEvent{{Slot: 0, Value: ctx.Param}}}
	}
	behaviors := map[string]struct {
		InitState InitState
		OnControl OnControl
		OnSignal  OnSignal
	}{
		"pulse": {OnSignal: passThrough},
		"decay": {OnSignal: passThrough},
		"level": {OnSignal: passThrough},
	}

	reg, errs := NewBuilder().
		WithTypes(AttachBehaviors(defs, behaviors)).
		Build()
	if errs != nil {
		t.Fatalf("expected a valid registry, got %v", errs)
	}
	if len(reg.Types()) != 3 {
		t.Errorf("expected 3 registered types, got %d", len(reg.Types()))
	}

	def, ok := reg.Lookup("decay")
	if !ok || def.OnSignal == nil {
		t.Errorf("expected decay to carry its attached behavior")
	}
}

func TestBuildRejectsCatalogWithoutBehaviors(t *testing.T) {
	defs, err := LoadCatalogYAML(strings.NewReader(testCatalogYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unattached definitions have no onSignal and must fail validation.
	reg, errs := NewBuilder().WithTypes(defs).Build()
	if reg != nil || errs == nil {
		t.Fatalf("expected Build to reject behavior-less definitions")
	}
	for _, e := range errs {
		if !strings.Contains(e.Error(), string(CodeMissingOnSignal)) {
			t.Errorf("expected every error to carry %s, got %q", CodeMissingOnSignal, e.Error())
		}
	}
}

func TestBuilderWithTypeAppendsSingleDefinition(t *testing.T) {
	reg, errs := NewBuilder().
		WithTypes(StdCatalog()).
		WithType(NodeTypeDef{
			Type: "fan", DisplayName: "Fan", Category: "modifier",
			Archetype: MultiOut6, Inputs: 0, Outputs: 6, DefaultParam: 1,
			OnSignal: func(BehaviorCtx) SignalResult { return SignalResult{} },
		}).
		Build()
	if errs != nil {
		t.Fatalf("expected a valid registry, got %v", errs)
	}
	if _, ok := reg.Lookup("fan"); !ok {
		t.Errorf("expected the WithType definition to be registered")
	}
}
