package legacy

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

// Export is a dump of the hosted backend's tables. Media rows already use
// the portal's field names.
type Export struct {
	Producers []ProducerRow   `json:"producers"`
	DJs       []DJRow         `json:"djs"`
	Events    []EventRow      `json:"events"`
	Contracts []ContractRow   `json:"contracts"`
	Media     []booking.Media `json:"media"`
}

func (e Export) Counts() map[string]int {
	return map[string]int{
		"producers": len(e.Producers),
		"djs":       len(e.DJs),
		"events":    len(e.Events),
		"contracts": len(e.Contracts),
		"media":     len(e.Media),
	}
}

// DecodeExport parses JSON or YAML. YAML is converted to JSON first so the
// json struct tags above apply to both.
func DecodeExport(data []byte) (Export, error) {
	var export Export
	if err := yaml.Unmarshal(data, &export); err != nil {
		return Export{}, fmt.Errorf("decode export: %w", err)
	}
	return export, nil
}

func ReadExport(path string) (Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Export{}, fmt.Errorf("read export: %w", err)
	}
	return DecodeExport(data)
}
