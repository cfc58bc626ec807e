package registry

// PulsePeriodTicks is how often, in ticks, a source node retriggers its
// own self-pulse. The runtime reads it when seeding and rescheduling
// sources; it is a catalog constant, not per-node state.
const PulsePeriodTicks = 4.0

// StdCatalog returns the built-in node types: the pulse source, the
// speed/set/random modifiers, the level control emitter, the four effect
// stampers, and the terminal output sink. A real deployment registers more,
// but these exercise the onControl and onSignal hooks (none declares
// initState), every control-vs-signal
// interaction, and every param-mapping table the audio bridge owns.
func StdCatalog() []NodeTypeDef {
	return []NodeTypeDef{
		pulseType(),
		speedType(),
		setType(),
		levelType(),
		randomType(),
		effectType("decay", "end", "decayTable"),
		effectType("crush", "crush", "crushTable"),
		effectType("hpf", "hpf", "hpfTable"),
		effectType("lpf", "lpf", "lpfTable"),
		outputType(),
	}
}

// levelType is a control emitter: its output port is control-role, so its
// pulses set the target node's param instead of triggering it. Wiring a
// level output into a signal input is a build error.
func levelType() NodeTypeDef {
	return NodeTypeDef{
		Type:          "level",
		DisplayName:   DisplayLabel("level"),
		Category:      "modifier",
		Archetype:     SingleIO,
		Inputs:        1,
		Outputs:       1,
		ControlOutput: true,
		DefaultParam:  1,
		OnControl: func(ctx BehaviorCtx) ControlResult {
			p := Clamp1to8(ctx.Pulse.Value)
			return ControlResult{Param: &p, HasParam: true}
		},
		OnSignal: func(ctx BehaviorCtx) SignalResult {
			return SignalResult{Outputs: []OutputEvent{{Slot: 0, Value: ctx.Param}}}
		},
	}
}

// effectType builds a modifier that stamps its current param into the
// pulse's params overlay under its mapping-table name; the audio bridge
// resolves the table to a concrete engine value at emission time.
func effectType(name, targetKey, mapping string) NodeTypeDef {
	return NodeTypeDef{
		Type:         name,
		DisplayName:  DisplayLabel(name),
		Category:     "effect",
		Archetype:    SingleIOControl,
		Inputs:       1,
		Outputs:      1,
		ControlPorts: 1,
		DefaultParam: 1,
		ParamMap:     &ParamMap{TargetKey: targetKey, Mapping: mapping},
		OnControl: func(ctx BehaviorCtx) ControlResult {
			p := Clamp1to8(ctx.Pulse.Value)
			return ControlResult{Param: &p, HasParam: true}
		},
		OnSignal: func(ctx BehaviorCtx) SignalResult {
			params := make(map[string]float64, len(ctx.Pulse.Params)+1)
			for k, v := range ctx.Pulse.Params {
				params[k] = v
			}
			params[mapping] = float64(ctx.Param)
			return SignalResult{Outputs: []OutputEvent{{Slot: 0, Params: params}}}
		},
	}
}

func pulseType() NodeTypeDef {
	return NodeTypeDef{
		Type:         "pulse",
		DisplayName:  DisplayLabel("pulse"),
		Category:     "source",
		Archetype:    SingleIO,
		Inputs:       1,
		Outputs:      1,
		DefaultParam: 1,
		OnControl: func(ctx BehaviorCtx) ControlResult {
			p := Clamp1to8(ctx.Pulse.Value)
			return ControlResult{Param: &p, HasParam: true}
		},
		OnSignal: func(ctx BehaviorCtx) SignalResult {
			return SignalResult{Outputs: []OutputEvent{{Slot: 0, Value: ctx.Param}}}
		},
	}
}

func speedType() NodeTypeDef {
	return NodeTypeDef{
		Type:         "speed",
		DisplayName:  DisplayLabel("speed"),
		Category:     "modifier",
		Archetype:    SingleIO,
		Inputs:       1,
		Outputs:      1,
		DefaultParam: 1,
		OnControl: func(ctx BehaviorCtx) ControlResult {
			p := Clamp1to8(ctx.Pulse.Value)
			return ControlResult{Param: &p, HasParam: true}
		},
		OnSignal: func(ctx BehaviorCtx) SignalResult {
			return SignalResult{Outputs: []OutputEvent{{
				Slot:  0,
				Value: ctx.Pulse.Value,
				Speed: ctx.Param,
			}}}
		},
	}
}

func setType() NodeTypeDef {
	return NodeTypeDef{
		Type:         "set",
		DisplayName:  DisplayLabel("set"),
		Category:     "modifier",
		Archetype:    SingleIOControl,
		Inputs:       1,
		Outputs:      1,
		ControlPorts: 1,
		DefaultParam: 1,
		OnControl: func(ctx BehaviorCtx) ControlResult {
			p := Clamp1to8(ctx.Pulse.Value)
			return ControlResult{Param: &p, HasParam: true}
		},
		OnSignal: func(ctx BehaviorCtx) SignalResult {
			return SignalResult{Outputs: []OutputEvent{{Slot: 0, Value: ctx.Param}}}
		},
	}
}

func randomType() NodeTypeDef {
	return NodeTypeDef{
		Type:         "random",
		DisplayName:  DisplayLabel("random"),
		Category:     "modifier",
		Archetype:    SingleIO,
		Inputs:       1,
		Outputs:      1,
		DefaultParam: 8,
		OnSignal: func(ctx BehaviorCtx) SignalResult {
			max := Clamp1to8(ctx.Param)
			v := 1
			if ctx.RNG != nil {
				v = 1 + ctx.RNG.IntN(max)
			}
			return SignalResult{Outputs: []OutputEvent{{Slot: 0, Value: v}}}
		},
	}
}

func outputType() NodeTypeDef {
	return NodeTypeDef{
		Type:         "output",
		DisplayName:  DisplayLabel("output"),
		Category:     "output",
		Archetype:    SingleIn,
		Inputs:       1,
		Outputs:      0,
		DefaultParam: 1,
		OnSignal: func(ctx BehaviorCtx) SignalResult {
			return SignalResult{}
		},
	}
}
