package pix

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	evpKey = "123e4567-e12b-12d1-a456-426614174000"

	// FULANO DE TAL, BRASILIA, random key, 10.00.
	fulanoWithAmount = "00020101021226580014BR.GOV.BCB.PIX0136123e4567-e12b-12d1-a456-426614174000520400005303986540510.005802BR5913FULANO DE TAL6008BRASILIA6304C345"
	fulanoNoAmount   = "00020101021226580014BR.GOV.BCB.PIX0136123e4567-e12b-12d1-a456-4266141740005204000053039865802BR5913FULANO DE TAL6008BRASILIA6304BAA5"
	fulanoWithLabel  = "00020101021226580014BR.GOV.BCB.PIX0136123e4567-e12b-12d1-a456-4266141740005204000053039865802BR5913FULANO DE TAL6008BRASILIA62070503***63047B0F"
)

func fulanoRequest() Request {
	return Request{
		Key:          evpKey,
		MerchantName: "FULANO DE TAL",
		MerchantCity: "BRASILIA",
	}
}

func TestEncodeStaticCode(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
		want   string
	}{
		{"with amount", func(r *Request) { r.Amount = decimal.NewFromInt(10) }, fulanoWithAmount},
		{"without amount", func(r *Request) {}, fulanoNoAmount},
		{"zero amount", func(r *Request) { r.Amount = decimal.Zero }, fulanoNoAmount},
		{"negative amount", func(r *Request) { r.Amount = decimal.NewFromInt(-5) }, fulanoNoAmount},
		{"sub-cent amount", func(r *Request) { r.Amount = decimal.RequireFromString("0.001") }, fulanoNoAmount},
		{"description", func(r *Request) { r.Description = "***" }, fulanoWithLabel},
		{"reference id only", func(r *Request) { r.ReferenceID = "***" }, fulanoNoAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := fulanoRequest()
			tc.modify(&req)

			code, err := Encode(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, code)
			assert.True(t, VerifyCRC(code))
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	req := fulanoRequest()
	req.Amount = decimal.NewFromInt(10)

	code, err := Encode(req)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, "000201010212"))
	assert.Contains(t, code, "5204000053039865405")
	assert.Contains(t, code, "0014BR.GOV.BCB.PIX")
	assert.Contains(t, code, "0136"+evpKey)
	assert.Equal(t, "6304", code[len(code)-8:len(code)-4])
	assert.Equal(t, CRC16(code[:len(code)-4]), code[len(code)-4:])
}

func TestEncodeReferenceIDNotWritten(t *testing.T) {
	tests := []struct {
		name        string
		description string
		wantLabel   string
	}{
		{"reference id only", "", ""},
		{"reference id and description", "Pedido 42", "Pedido 42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := fulanoRequest()
			req.ReferenceID = "TX1"
			req.Description = tc.description

			code, err := Encode(req)
			require.NoError(t, err)
			assert.NotContains(t, code, "TX1")

			p, err := Decode(code)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLabel, p.AdditionalData.ReferenceLabel)
			assert.Empty(t, p.Unknown)
			if tc.wantLabel == "" {
				assert.NotContains(t, code, "6008BRASILIA62")
			}
		})
	}
}

func TestEncodeAmountRoundedBeforePositivityCheck(t *testing.T) {
	tests := []struct {
		amount  string
		wantTag string
	}{
		{"0.001", ""},
		{"0.004", ""},
		{"0.005", "54040.01"},
		{"0.01", "54040.01"},
	}

	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			req := fulanoRequest()
			req.Amount = decimal.RequireFromString(tc.amount)

			code, err := Encode(req)
			require.NoError(t, err)

			p, err := Decode(code)
			require.NoError(t, err)
			if tc.wantTag == "" {
				assert.Equal(t, fulanoNoAmount, code)
				assert.False(t, p.Transaction.Amount.Valid)
				return
			}
			assert.Contains(t, code, tc.wantTag)
			assert.True(t, p.Transaction.Amount.Valid)
		})
	}
}

func TestEncodeAmountFormatting(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"10.5", "540510.50"},
		{"1", "54041.00"},
		{"0.01", "54040.01"},
		{"1234.567", "54071234.57"},
		{"9999999999.99", "54139999999999.99"},
	}

	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			req := fulanoRequest()
			req.Amount = decimal.RequireFromString(tc.amount)

			code, err := Encode(req)
			require.NoError(t, err)
			assert.Contains(t, code, tc.want)
		})
	}
}

func TestEncodeTruncation(t *testing.T) {
	req := Request{
		Key:          evpKey,
		MerchantName: "ESTABELECIMENTO COMERCIAL DE TESTE",
		MerchantCity: "SAO JOSE DOS CAMPOS",
		Description:  strings.Repeat("D", 100),
	}

	code, err := Encode(req)
	require.NoError(t, err)

	p, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, "ESTABELECIMENTO COMERCIAL", p.MerchantName)
	assert.Equal(t, "SAO JOSE DOS CA", p.MerchantCity)
	assert.Equal(t, strings.Repeat("D", MaxDescription), p.AdditionalData.ReferenceLabel)
	assert.True(t, p.ChecksumValid)
}

func TestEncodeASCIIFolding(t *testing.T) {
	req := Request{
		Key:          evpKey,
		MerchantName: "JOSÉ DA CONCEIÇÃO",
		MerchantCity: "São Paulo",
		Description:  "Pão de queijo",
	}

	folded, err := Encode(req, WithASCIIFolding())
	require.NoError(t, err)
	assert.Contains(t, folded, "5917JOSE DA CONCEICAO")
	assert.Contains(t, folded, "6009Sao Paulo")
	assert.Contains(t, folded, "0513Pao de queijo")

	raw, err := Encode(req)
	require.NoError(t, err)
	assert.Contains(t, raw, "6009São Paulo")
	assert.True(t, VerifyCRC(raw))
}

func TestEncodeCountsUTF16Units(t *testing.T) {
	req := fulanoRequest()
	req.MerchantName = "LOJA 😀"

	code, err := Encode(req)
	require.NoError(t, err)
	// The emoji is a surrogate pair: 5 + 2 code units.
	assert.Contains(t, code, "5907LOJA 😀")

	p, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, "LOJA 😀", p.MerchantName)
	assert.True(t, p.ChecksumValid)
}

func TestEncodeInfo(t *testing.T) {
	req := fulanoRequest()
	req.Info = "PAGAMENTO"

	code, err := Encode(req)
	require.NoError(t, err)
	assert.Contains(t, code, "26710014BR.GOV.BCB.PIX0136"+evpKey+"0209PAGAMENTO")

	p, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, "PAGAMENTO", p.MerchantAccount.Description)
}

func TestEncodeValueTooLong(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
		tag    string
	}{
		{"info overflows merchant account", func(r *Request) { r.Info = strings.Repeat("I", 60) }, TagMerchantAccount},
		{"key too long", func(r *Request) { r.Key = strings.Repeat("k", 100) }, TagMerchantAccount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := fulanoRequest()
			tc.modify(&req)

			_, err := Encode(req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValueTooLong)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.tag, fe.Tag)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []Request{
		{Key: "52998224725", MerchantName: "MARIA", MerchantCity: "RECIFE", Amount: decimal.RequireFromString("0.50")},
		{Key: "11222333000181", MerchantName: "EMPRESA LTDA", MerchantCity: "CURITIBA", Description: "Pedido 42"},
		{Key: "fulano@example.com", MerchantName: "FULANO", MerchantCity: "NATAL", ReferenceID: "TX1"},
		{Key: "+5561999999999", MerchantName: "CICLANO", MerchantCity: "BRASILIA", Amount: decimal.NewFromInt(150)},
		{Key: evpKey, MerchantName: "BELTRANO", MerchantCity: "MANAUS", Info: "doacao"},
	}
	wantTypes := []KeyType{KeyCPF, KeyCNPJ, KeyEmail, KeyPhone, KeyEVP}

	for i, req := range tests {
		t.Run(wantTypes[i].Name(), func(t *testing.T) {
			code, err := Encode(req)
			require.NoError(t, err)

			p, err := Decode(code)
			require.NoError(t, err)

			assert.True(t, p.ChecksumValid)
			assert.True(t, p.IsStatic())
			assert.Equal(t, GUI, p.MerchantAccount.GUI)
			assert.Equal(t, req.Key, p.MerchantAccount.Key)
			assert.Equal(t, wantTypes[i], p.MerchantAccount.KeyType)
			assert.Equal(t, req.MerchantName, p.MerchantName)
			assert.Equal(t, req.MerchantCity, p.MerchantCity)
			assert.Equal(t, req.Info, p.MerchantAccount.Description)

			if req.Amount.IsPositive() {
				require.True(t, p.Transaction.Amount.Valid)
				assert.True(t, req.Amount.Equal(p.Transaction.Amount.Decimal))
			} else {
				assert.False(t, p.Transaction.Amount.Valid)
			}

			assert.Equal(t, req.Description, p.AdditionalData.ReferenceLabel)
		})
	}
}
