package ofx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseBankStatement(t *testing.T) {
	parser := NewParser()

	entries, err := parser.Parse(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.InDelta(t, -25.50, entries[0].Amount, 0.001)
	assert.Equal(t, "2024-01-15", entries[0].Date.String())
	assert.Equal(t, "STARBUCKS STORE #1234", entries[0].Description)

	assert.InDelta(t, -125.00, entries[1].Amount, 0.001)
	assert.Equal(t, "2024-01-20", entries[1].Date.String())
	assert.Equal(t, "Whole Foods Market", entries[1].Description)
}

func TestParseInvalidInput(t *testing.T) {
	parser := NewParser()

	_, err := parser.Parse(strings.NewReader("this is not an OFX document"))
	assert.Error(t, err)
}

func TestPreprocessFixesSeverityCase(t *testing.T) {
	parser := NewParser()

	fixed := parser.preprocess("<SEVERITY>Info</SEVERITY>")
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>", fixed)
}

func TestPreprocessClosesDanglingTags(t *testing.T) {
	parser := NewParser()

	fixed := parser.preprocess("<OFX>\n<TRNUID\n</OFX>")
	assert.Contains(t, fixed, "<TRNUID>")
}
