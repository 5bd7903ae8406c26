package idhash

import "testing"

func TestComputeSignalID_Deterministic(t *testing.T) {
	id1 := ComputeSignalID("TokenAddr", "volume-momentum", 1700000000000)
	id2 := ComputeSignalID("TokenAddr", "volume-momentum", 1700000000000)

	if id1 != id2 {
		t.Errorf("same inputs produced different ids: %s vs %s", id1, id2)
	}
	if len(id1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(id1))
	}
}

func TestComputeSignalID_DistinctInputs(t *testing.T) {
	base := ComputeSignalID("TokenAddr", "volume-momentum", 1700000000000)

	variants := []string{
		ComputeSignalID("OtherAddr", "volume-momentum", 1700000000000),
		ComputeSignalID("TokenAddr", "other-strategy", 1700000000000),
		ComputeSignalID("TokenAddr", "volume-momentum", 1700000000001),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base id", i)
		}
	}
}
