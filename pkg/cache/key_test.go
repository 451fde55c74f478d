package cache

import "testing"

func TestHashQueryDeterministic(t *testing.T) {
	h1 := HashQuery("muestra todos los clientes", "cfg-1", "")
	h2 := HashQuery("muestra todos los clientes", "cfg-1", "")
	if h1 != h2 {
		t.Error("same input should produce same hash")
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestHashQueryNormalization(t *testing.T) {
	h1 := HashQuery("  Muestra   TODOS los   clientes ", "cfg-1", "")
	h2 := HashQuery("muestra todos los clientes", "cfg-1", "")
	if h1 != h2 {
		t.Error("case and whitespace differences should not change the hash")
	}
}

func TestHashQueryInputsChangeHash(t *testing.T) {
	base := HashQuery("muestra todos los clientes", "cfg-1", "")
	if HashQuery("muestra todos los clientes", "cfg-2", "") == base {
		t.Error("different config id should change the hash")
	}
	if HashQuery("muestra todos los clientes", "cfg-1", "clientes") == base {
		t.Error("collection name should change the hash")
	}
	if HashQuery("cuántos clientes hay", "cfg-1", "") == base {
		t.Error("different query should change the hash")
	}
}
