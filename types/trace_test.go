package types

import (
	"encoding/json"
	"testing"
)

func sampleTrace() *Trace {
	trace := NewTrace()
	trace.Append(0, &testState{id: 0}, testAction("a"), 2, &testState{id: 1})
	trace.Append(1, &testState{id: 1}, testAction("b"), 0, &testState{id: 2})
	trace.Append(2, &testState{id: 2}, testAction("a"), 4, &testState{id: 3})
	return trace
}

func TestTraceAccessors(t *testing.T) {
	trace := sampleTrace()

	if trace.Len() != 3 {
		t.Fatalf("Len = %d, want 3", trace.Len())
	}

	s, a, r, ns, ok := trace.Get(1)
	if !ok || s.Hash() != "s1" || a.Hash() != "b" || r != 0 || ns.Hash() != "s2" {
		t.Errorf("Get(1) = %v %v %v %v %v", s, a, r, ns, ok)
	}

	if _, _, _, _, ok := trace.Get(3); ok {
		t.Errorf("Get past the end reported ok")
	}

	s, _, r, _, ok = trace.Last()
	if !ok || s.Hash() != "s2" || r != 4 {
		t.Errorf("Last = %v %v %v", s, r, ok)
	}

	if total := trace.TotalReward(); total != 6 {
		t.Errorf("TotalReward = %v, want 6", total)
	}
}

func TestTracePrefix(t *testing.T) {
	trace := sampleTrace()

	prefix, ok := trace.GetPrefix(2)
	if !ok || prefix.Len() != 2 {
		t.Fatalf("GetPrefix(2) = len %d, ok %v", prefix.Len(), ok)
	}
	if prefix.TotalReward() != 2 {
		t.Errorf("prefix TotalReward = %v, want 2", prefix.TotalReward())
	}

	if _, ok := trace.GetPrefix(4); ok {
		t.Errorf("GetPrefix past the end reported ok")
	}
}

func TestTraceMarshal(t *testing.T) {
	trace := NewTrace()
	trace.Append(0, &testState{id: 0}, testAction("a"), 4, &testState{id: 1})

	bs, err := json.Marshal(trace)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var steps []map[string]any
	if err := json.Unmarshal(bs, &steps); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("marshalled %d steps, want 1", len(steps))
	}
	step := steps[0]
	if step["state"] != "s0" || step["action"] != "a" || step["reward"] != 4.0 || step["next_state"] != "s1" {
		t.Errorf("marshalled step = %v", step)
	}
}
