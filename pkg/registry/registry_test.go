package registry

import (
	"reflect"
	"testing"

	"github.com/marshallshelly/pebble-orders/pkg/models"
)

type Shelf struct {
	ID   int64  `po:"id,primaryKey,serial"`
	Name string `po:"name,text,notNull"`
}

type Bin struct {
	ID      int64 `po:"id,primaryKey,serial"`
	ShelfID int64 `po:"shelf_id,integer,notNull,fk:shelf(id)"`
}

type Loop struct {
	ID     int64 `po:"id,primaryKey,serial"`
	LoopID int64 `po:"loop_id,integer,fk:other(id)"`
}

type Other struct {
	ID     int64 `po:"id,primaryKey,serial"`
	LoopID int64 `po:"loop_id,integer,fk:loop(id)"`
}

type Parent struct {
	ID       int64 `po:"id,primaryKey,serial"`
	ParentID int64 `po:"parent_id,integer,fk:parent(id)"`
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	t.Run("register new model", func(t *testing.T) {
		if err := registry.Register(Shelf{}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if !registry.Has("shelf") {
			t.Error("expected model to be registered")
		}
	})

	t.Run("register duplicate model", func(t *testing.T) {
		if err := registry.Register(&Shelf{}); err != nil {
			t.Errorf("Duplicate register failed: %v", err)
		}
		if got := registry.Names(); len(got) != 1 {
			t.Errorf("expected a single registration, got %v", got)
		}
	})

	t.Run("register invalid type", func(t *testing.T) {
		if err := registry.Register("not a struct"); err == nil {
			t.Error("expected error for non-struct type")
		}
		if err := registry.Register(nil); err == nil {
			t.Error("expected error for nil")
		}
	})
}

func TestRegistry_Get(t *testing.T) {
	registry, err := New(Shelf{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	table, err := registry.Get(reflect.TypeOf(&Shelf{}))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if table.Name != "shelf" {
		t.Errorf("expected table name 'shelf', got '%s'", table.Name)
	}

	if _, err := registry.Get(reflect.TypeOf(Bin{})); err == nil {
		t.Error("expected error for unregistered type")
	}
}

func TestRegistry_Ordered(t *testing.T) {
	t.Run("order models", func(t *testing.T) {
		// register in reverse to prove ordering comes from references
		all := models.All()
		reversed := make([]any, 0, len(all))
		for i := len(all) - 1; i >= 0; i-- {
			reversed = append(reversed, all[i])
		}
		registry, err := New(reversed...)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		tables, err := registry.Ordered()
		if err != nil {
			t.Fatalf("Ordered failed: %v", err)
		}

		pos := make(map[string]int)
		for i, table := range tables {
			pos[table.Name] = i
		}
		for _, table := range tables {
			for _, ref := range table.References() {
				if pos[ref] >= pos[table.Name] {
					t.Errorf("%s must come before %s", ref, table.Name)
				}
			}
		}
		if len(tables) != 5 {
			t.Errorf("expected 5 tables, got %d", len(tables))
		}
	})

	t.Run("registration order kept for independent tables", func(t *testing.T) {
		registry, err := New(models.All()...)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		tables, err := registry.Ordered()
		if err != nil {
			t.Fatalf("Ordered failed: %v", err)
		}
		want := []string{"categories", "products", "customers", "orders", "order_items"}
		for i, table := range tables {
			if table.Name != want[i] {
				t.Errorf("position %d = %s, want %s", i, table.Name, want[i])
			}
		}
	})

	t.Run("self reference", func(t *testing.T) {
		registry, _ := New(Parent{})
		if _, err := registry.Ordered(); err != nil {
			t.Errorf("self reference should be allowed: %v", err)
		}
	})

	t.Run("unregistered reference", func(t *testing.T) {
		registry, _ := New(Bin{})
		if _, err := registry.Ordered(); err == nil {
			t.Error("expected error for unregistered reference")
		}
	})

	t.Run("cycle", func(t *testing.T) {
		registry, _ := New(Loop{}, Other{})
		if _, err := registry.Ordered(); err == nil {
			t.Error("expected error for cycle")
		}
	})
}

func TestRegistry_GetOrRegister(t *testing.T) {
	registry := NewRegistry()

	table, err := registry.GetOrRegister(Shelf{})
	if err != nil {
		t.Fatalf("GetOrRegister failed: %v", err)
	}
	again, err := registry.GetOrRegister(&Shelf{})
	if err != nil {
		t.Fatalf("GetOrRegister failed: %v", err)
	}
	if table != again {
		t.Error("expected the same metadata on second call")
	}
	if _, err := registry.GetOrRegister(42); err == nil {
		t.Error("expected error for non-struct")
	}
}
