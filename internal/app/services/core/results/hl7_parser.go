package results

import (
	"fmt"
	"labtrace-service/internal/pkg/dto/requests"
	"strconv"
	"strings"
)

// ParseHL7ORU parses an ORU^R01 observation message into the same request
// shape the structured JSON webhook uses. Field mapping: OBR-2 carries the
// placer order number, OBR-3 the filler reference used for idempotency, and
// each OBX segment one reported value with its units and reference range.
func ParseHL7ORU(raw []byte) (*requests.LabResultWebhook, error) {
	segments, err := splitSegments(raw)
	if err != nil {
		return nil, err
	}

	request := &requests.LabResultWebhook{}

	for _, segment := range segments {
		fields := strings.Split(segment, "|")
		switch fields[0] {
		case "MSH":
			// MSH-9 sits at index 8 because MSH-1 is the separator itself.
			if len(fields) > 8 && !strings.HasPrefix(fields[8], "ORU") {
				return nil, fmt.Errorf("unsupported message type %q", fields[8])
			}
			if len(fields) > 6 {
				request.ReportedAt = fields[6]
			}
		case "OBR":
			if len(fields) > 2 {
				request.OrderNumber = component(fields[2], 0)
			}
			if len(fields) > 3 {
				request.ExternalRef = component(fields[3], 0)
			}
		case "OBX":
			value, err := parseOBX(fields)
			if err != nil {
				return nil, err
			}
			request.Values = append(request.Values, value)
		}
	}

	if request.OrderNumber == "" || request.ExternalRef == "" {
		return nil, fmt.Errorf("missing OBR order identifiers")
	}
	if len(request.Values) == 0 {
		return nil, fmt.Errorf("no OBX segments present")
	}

	return request, nil
}

func splitSegments(raw []byte) ([]string, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")

	var segments []string
	for _, line := range strings.Split(text, "\r") {
		line = strings.TrimSpace(line)
		if line != "" {
			segments = append(segments, line)
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("message is empty")
	}
	if !strings.HasPrefix(segments[0], "MSH") {
		return nil, fmt.Errorf("first segment must be MSH")
	}
	return segments, nil
}

// parseOBX maps one observation segment: OBX-3 code^name, OBX-5 value,
// OBX-6 unit, OBX-7 low-high reference range.
func parseOBX(fields []string) (requests.LabReportedValue, error) {
	var value requests.LabReportedValue

	if len(fields) > 3 {
		value.Code = component(fields[3], 0)
		value.Name = component(fields[3], 1)
	}
	if value.Code == "" {
		return value, fmt.Errorf("OBX segment missing observation code")
	}

	if len(fields) > 5 {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
		if err != nil {
			return value, fmt.Errorf("OBX value for %s is not numeric: %w", value.Code, err)
		}
		value.Value = parsed
	} else {
		return value, fmt.Errorf("OBX segment for %s missing value", value.Code)
	}

	if len(fields) > 6 {
		value.Unit = component(fields[6], 0)
	}
	if len(fields) > 7 {
		low, high, err := parseReferenceRange(fields[7])
		if err != nil {
			return value, fmt.Errorf("OBX range for %s: %w", value.Code, err)
		}
		value.RefLow = low
		value.RefHigh = high
	}

	return value, nil
}

func parseReferenceRange(raw string) (float64, float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, nil
	}
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("range %q is not low-high", raw)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return low, high, nil
}

func component(field string, index int) string {
	components := strings.Split(field, "^")
	if index >= len(components) {
		return ""
	}
	return strings.TrimSpace(components[index])
}
