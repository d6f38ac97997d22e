package ingestion

import (
	"fmt"
	"strings"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
)

// Registry implements adapter.ParserRegistry, resolving parsers by processor
// name, case-insensitively.
type Registry struct {
	parsers map[string]adapter.SettlementParser
}

// NewRegistry creates a registry with the three supported processors wired in.
func NewRegistry() *Registry {
	return &Registry{
		parsers: map[string]adapter.SettlementParser{
			"payflow":     NewCSVParser(),
			"transactmax": NewJSONParser(),
			"globalpay":   NewXMLParser(),
		},
	}
}

// ForProcessor returns the parser for a processor name.
func (r *Registry) ForProcessor(processor string) (adapter.SettlementParser, error) {
	key := strings.ToLower(strings.TrimSpace(processor))
	parser, ok := r.parsers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			domainerror.ErrUnknownProcessor, processor, strings.Join(r.Supported(), ", "))
	}
	return parser, nil
}

// Supported lists the registered processor keys.
func (r *Registry) Supported() []string {
	keys := make([]string, 0, len(r.parsers))
	for _, key := range []string{"payflow", "transactmax", "globalpay"} {
		if _, ok := r.parsers[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// stripBOM drops a UTF-8 byte order mark if present.
func stripBOM(content []byte) []byte {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:]
	}
	return content
}
