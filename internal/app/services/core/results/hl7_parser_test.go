package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleORU = "MSH|^~\\&|LABSYS|ACME|LABTRACE|CLINIC|20260115093000||ORU^R01|MSG0001|P|2.5.1\r" +
	"PID|1||PAT-777||Doe^Jordan\r" +
	"OBR|1|LAB-20260110-123456|EXT-REF-001|CBC^Complete Blood Count\r" +
	"OBX|1|NM|HGB^Hemoglobin||141|g/L|120-160|N|||F\r" +
	"OBX|2|NM|K^Potassium||6.9|mmol/L|3.5-5.1|HH|||F\r"

func TestParseHL7ORU(t *testing.T) {
	t.Run("Valid ORU Message", func(t *testing.T) {
		request, err := ParseHL7ORU([]byte(sampleORU))
		require.NoError(t, err)

		assert.Equal(t, "LAB-20260110-123456", request.OrderNumber)
		assert.Equal(t, "EXT-REF-001", request.ExternalRef)
		assert.Equal(t, "20260115093000", request.ReportedAt)
		require.Len(t, request.Values, 2)

		assert.Equal(t, "HGB", request.Values[0].Code)
		assert.Equal(t, "Hemoglobin", request.Values[0].Name)
		assert.Equal(t, 141.0, request.Values[0].Value)
		assert.Equal(t, "g/L", request.Values[0].Unit)
		assert.Equal(t, 120.0, request.Values[0].RefLow)
		assert.Equal(t, 160.0, request.Values[0].RefHigh)

		assert.Equal(t, "K", request.Values[1].Code)
		assert.Equal(t, 6.9, request.Values[1].Value)
	})

	t.Run("Newline Segment Separators", func(t *testing.T) {
		withNewlines := "MSH|^~\\&|LABSYS|ACME|LABTRACE|CLINIC|20260115093000||ORU^R01|MSG0002|P|2.5.1\n" +
			"OBR|1|LAB-20260110-123456|EXT-REF-002|CBC\n" +
			"OBX|1|NM|HGB^Hemoglobin||141|g/L|120-160|N|||F\n"

		request, err := ParseHL7ORU([]byte(withNewlines))
		require.NoError(t, err)
		assert.Equal(t, "EXT-REF-002", request.ExternalRef)
	})

	t.Run("Missing MSH", func(t *testing.T) {
		_, err := ParseHL7ORU([]byte("OBR|1|X|Y\rOBX|1|NM|HGB^||141|g/L|120-160\r"))
		assert.Error(t, err)
	})

	t.Run("Wrong Message Type", func(t *testing.T) {
		adt := "MSH|^~\\&|LABSYS|ACME|LABTRACE|CLINIC|20260115093000||ADT^A01|MSG0003|P|2.5.1\r" +
			"OBR|1|LAB-20260110-123456|EXT-REF-003\r" +
			"OBX|1|NM|HGB^||141|g/L|120-160\r"
		_, err := ParseHL7ORU([]byte(adt))
		assert.Error(t, err)
	})

	t.Run("Missing OBR Identifiers", func(t *testing.T) {
		noOBR := "MSH|^~\\&|LABSYS|ACME|LABTRACE|CLINIC|20260115093000||ORU^R01|MSG0004|P|2.5.1\r" +
			"OBX|1|NM|HGB^||141|g/L|120-160\r"
		_, err := ParseHL7ORU([]byte(noOBR))
		assert.Error(t, err)
	})

	t.Run("Non Numeric OBX Value", func(t *testing.T) {
		bad := "MSH|^~\\&|LABSYS|ACME|LABTRACE|CLINIC|20260115093000||ORU^R01|MSG0005|P|2.5.1\r" +
			"OBR|1|LAB-20260110-123456|EXT-REF-005\r" +
			"OBX|1|ST|HGB^||positive|g/L|120-160\r"
		_, err := ParseHL7ORU([]byte(bad))
		assert.Error(t, err)
	})

	t.Run("No OBX Segments", func(t *testing.T) {
		empty := "MSH|^~\\&|LABSYS|ACME|LABTRACE|CLINIC|20260115093000||ORU^R01|MSG0006|P|2.5.1\r" +
			"OBR|1|LAB-20260110-123456|EXT-REF-006\r"
		_, err := ParseHL7ORU([]byte(empty))
		assert.Error(t, err)
	})
}
