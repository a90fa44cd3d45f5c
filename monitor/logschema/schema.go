// Package logschema pins the required fields of every structured log
// event, so a strategy's reasoning can be reconstructed from its logs
// without replaying venue state.
package logschema

import (
	"fmt"
	"sort"
	"strings"
)

// Schema names an event and the keys it must carry.
type Schema struct {
	Event    string
	Required []string
}

var schemas = map[string]Schema{
	"quote_skip": {
		Event:    "quote_skip",
		Required: []string{"strategy", "action", "price", "reason"},
	},
	"order_place": {
		Event:    "order_place",
		Required: []string{"strategy", "action", "price", "size", "order_id"},
	},
	"order_cancel": {
		Event:    "order_cancel",
		Required: []string{"strategy", "action", "order_id", "reason"},
	},
	"order_keep": {
		Event:    "order_keep",
		Required: []string{"strategy", "action", "order_id"},
	},
	"order_reject": {
		Event:    "order_reject",
		Required: []string{"strategy", "action", "price", "error"},
	},
	"tick_error": {
		Event:    "tick_error",
		Required: []string{"strategy", "error"},
	},
	"strategy_stop": {
		Event:    "strategy_stop",
		Required: []string{"strategy", "reason"},
	},
}

// Known returns all event names, for documentation tooling.
func Known() []string {
	names := make([]string, 0, len(schemas))
	for k := range schemas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate checks that fields carry every key the event's schema
// requires. Unknown events pass: only registered events are pinned.
func Validate(event string, fields map[string]interface{}) error {
	s, ok := schemas[event]
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range s.Required {
		if _, exists := fields[key]; !exists {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ","))
	}
	return nil
}
