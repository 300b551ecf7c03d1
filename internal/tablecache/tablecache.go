// Package tablecache persists a built parse.Table to disk with
// github.com/dekarrin/rezi, the binary serialization format
// server/dao/sqlite uses to store game.State blobs. LR table construction
// (C3) is a pure function of the fixed Cilantro grammar, so a cached table
// can be reused across CLI invocations until the grammar (and therefore the
// cache format) changes; Version guards against a stale cache surviving a
// grammar edit.
package tablecache

import (
	"fmt"
	"os"

	"github.com/dekarrin/rezi"

	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/parse"
	"github.com/shine00chang/cilantro/internal/compiler/token"
)

// Version must be bumped any time the Cilantro grammar (internal/compiler/
// grammar.Cilantro) changes in a way that would alter the built table's
// shape; a cache written under an older version is treated as a miss rather
// than decoded.
const Version = 1

// document is the on-disk shape: a version tag plus every state's action
// map, flattened to a slice of entries since rezi round-trips structs and
// slices more predictably than Go maps keyed by struct values.
type document struct {
	Version int
	States  []stateDoc
}

type stateDoc struct {
	Entries []entryDoc
}

type entryDoc struct {
	ElemIsToken bool
	ElemNode    int
	ElemToken   int

	ActionKind  int
	ActionState int
	ActionProd  int
}

// Load reads a cached table from path. ok is false (with a nil error) on any
// condition that should fall back to rebuilding the table from scratch: the
// file does not exist, or its version tag does not match Version.
func Load(path string) (table parse.Table, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	var doc document
	n, err := rezi.DecBinary(data, &doc)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", path, err)
	}
	if n != len(data) {
		return nil, false, fmt.Errorf("decode %s: consumed %d/%d bytes", path, n, len(data))
	}

	if doc.Version != Version {
		return nil, false, nil
	}

	return fromDocument(doc), true, nil
}

// Save writes table to path under the current Version tag.
func Save(path string, table parse.Table) error {
	doc := toDocument(table)
	data := rezi.EncBinary(&doc)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func toDocument(table parse.Table) document {
	doc := document{Version: Version, States: make([]stateDoc, len(table))}
	for i, state := range table {
		entries := make([]entryDoc, 0, len(state))
		for elem, action := range state {
			entries = append(entries, entryDoc{
				ElemIsToken: elem.IsToken,
				ElemNode:    int(elem.Node),
				ElemToken:   int(elem.Token),
				ActionKind:  int(action.Kind),
				ActionState: action.State,
				ActionProd:  action.Prod,
			})
		}
		doc.States[i] = stateDoc{Entries: entries}
	}
	return doc
}

func fromDocument(doc document) parse.Table {
	table := make(parse.Table, len(doc.States))
	for i, state := range doc.States {
		m := make(map[grammar.ElemKind]parse.Action, len(state.Entries))
		for _, e := range state.Entries {
			elem := grammar.ElemKind{
				IsToken: e.ElemIsToken,
				Node:    grammar.NodeKind(e.ElemNode),
				Token:   token.Kind(e.ElemToken),
			}
			m[elem] = parse.Action{
				Kind:  parse.ActionKind(e.ActionKind),
				State: e.ActionState,
				Prod:  e.ActionProd,
			}
		}
		table[i] = m
	}
	return table
}
