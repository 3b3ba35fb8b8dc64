package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
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
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEP
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>50000.00
<FITID>2024013101
<NAME>PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
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

const sampleCreditCardOFX = `OFXHEADER:100
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
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "bank statement skips credits and repeated FITIDs",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "leading blank lines",
			ofxData:       "\n\n  " + sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser(nil)

			candidates, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, candidates, tt.expectedCount)
		})
	}
}

func TestParseBankDebits(t *testing.T) {
	candidates, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	first := candidates[0]
	assert.Equal(t, "2024011501", first.FitID)
	assert.Equal(t, "STARBUCKS STORE #1234", first.Name)
	assert.Equal(t, 25.50, first.Amount)
	assert.Equal(t, "1234567890", first.Account)
	assert.Equal(t, 2024, first.Posted.Year())
	assert.Equal(t, time.January, first.Posted.Month())
	assert.Equal(t, 15, first.Posted.Day())

	assert.Equal(t, "Whole Foods Market", candidates[1].Name)
	assert.Equal(t, 125.00, candidates[1].Amount)

	assert.Equal(t, "CHECK #1234", candidates[2].Name)
	assert.Equal(t, 500.00, candidates[2].Amount)

	for _, c := range candidates {
		assert.NotEqual(t, "PAYROLL", c.Name)
	}
}

func TestParseCreditCardDebits(t *testing.T) {
	candidates, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", candidates[0].Name)
	assert.Equal(t, 45.99, candidates[0].Amount)
	assert.Equal(t, "4111111111111111", candidates[0].Account)

	assert.Equal(t, "NETFLIX.COM", candidates[1].Name)
	assert.Equal(t, 15.00, candidates[1].Amount)
}

func TestParseFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPayeeName(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "strip posting date",
			tx:       ofxgo.Transaction{Name: "01/15 GROCERY OUTLET"},
			expected: "GROCERY OUTLET",
		},
		{
			name:     "keep clean name",
			tx:       ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
		{
			name:     "memo replaces generic name",
			tx:       ofxgo.Transaction{Name: "PURCHASE", Memo: "CORNER BAKERY"},
			expected: "CORNER BAKERY",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "ACH DEBIT 99812", Payee: &ofxgo.Payee{Name: "City Water"}},
			expected: "City Water",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, payeeName(tt.tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n  <OFX>\n<SEVERITY>Info</SEVERITY>\n<CODE\n"
	out := preprocessOFX(in)

	assert.True(t, strings.HasPrefix(out, "<OFX>"))
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<CODE>\n")
}
