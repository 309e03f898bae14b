package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_Definitions(t *testing.T) {
	defs := Collections()

	want := map[string]bool{"Spaces": true, "Reservations": true, "Space_locks": true, "Counters": false}
	if len(defs) != len(want) {
		t.Fatalf("collections = %d, want %d", len(defs), len(want))
	}

	for _, def := range defs {
		hasValidator, ok := want[def.Name]
		if !ok {
			t.Errorf("unexpected collection %q", def.Name)
			continue
		}
		if (def.Validator != nil) != hasValidator {
			t.Errorf("%s validator present = %v, want %v", def.Name, def.Validator != nil, hasValidator)
		}
	}
}

func TestCollections_LockTTLIndex(t *testing.T) {
	for _, def := range Collections() {
		if def.Name != "Space_locks" {
			continue
		}
		if len(def.Indexes) != 1 || def.Indexes[0].Options == nil || def.Indexes[0].Options.ExpireAfterSeconds == nil {
			t.Fatalf("lock collection needs a TTL index, got %+v", def.Indexes)
		}
		if *def.Indexes[0].Options.ExpireAfterSeconds != 0 {
			t.Errorf("ExpireAfterSeconds = %d, want 0", *def.Indexes[0].Options.ExpireAfterSeconds)
		}
		return
	}
	t.Fatal("lock collection missing")
}

func TestCollections_ReservationIndexLeadsWithSpace(t *testing.T) {
	for _, def := range Collections() {
		if def.Name != "Reservations" {
			continue
		}
		keys, ok := def.Indexes[0].Keys.(bson.D)
		if !ok || len(keys) == 0 || keys[0].Key != "space_id" {
			t.Errorf("first reservation index = %+v", def.Indexes[0].Keys)
		}
		return
	}
	t.Fatal("reservation collection missing")
}
