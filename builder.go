package pix

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Builder pool for reuse
var builderPool = sync.Pool{
	New: func() interface{} {
		return &Builder{
			errors: make([]error, 0, 4),
		}
	},
}

// Builder assembles a Request field by field and encodes it. Setters
// record the first problem and Build reports it, so calls can be chained:
//
//	code, err := pix.NewBuilder().
//		Key("123e4567-e12b-12d1-a456-426614174000").
//		Merchant("FULANO DE TAL", "BRASILIA").
//		Amount("10.00").
//		Build()
type Builder struct {
	req    Request
	opts   []EncodeOption
	errors []error
}

func NewBuilder(opts ...EncodeOption) *Builder {
	b := builderPool.Get().(*Builder)
	b.req = Request{}
	b.opts = append(b.opts[:0], opts...)
	b.errors = b.errors[:0]
	return b
}

// Release returns the builder to the pool
func (b *Builder) Release() {
	b.req = Request{}
	b.opts = b.opts[:0]
	b.errors = b.errors[:0]
	builderPool.Put(b)
}

// Key sets the PIX key after checking it with ValidateKey.
func (b *Builder) Key(key string) *Builder {
	if err := ValidateKey(key); err != nil {
		b.errors = append(b.errors, err)
	}
	b.req.Key = key
	return b
}

func (b *Builder) Merchant(name, city string) *Builder {
	b.req.MerchantName = name
	b.req.MerchantCity = city
	return b
}

// Amount parses a decimal string such as "10.50".
func (b *Builder) Amount(amount string) *Builder {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		b.errors = append(b.errors, &ValidationError{Field: "amount", Rule: "decimal", Message: err.Error()})
		return b
	}
	return b.AmountDecimal(d)
}

func (b *Builder) AmountDecimal(amount decimal.Decimal) *Builder {
	b.req.Amount = amount
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.req.Description = description
	return b
}

func (b *Builder) ReferenceID(id string) *Builder {
	b.req.ReferenceID = id
	return b
}

func (b *Builder) Info(info string) *Builder {
	b.req.Info = info
	return b
}

// Request returns a copy of the request built so far.
func (b *Builder) Request() Request {
	return b.req
}

// Build validates the request and encodes it.
func (b *Builder) Build() (string, error) {
	if len(b.errors) > 0 {
		return "", b.errors[0]
	}
	if err := b.req.Validate(); err != nil {
		return "", err
	}
	return Encode(b.req, b.opts...)
}

func (b *Builder) MustBuild() string {
	code, err := b.Build()
	if err != nil {
		panic(err)
	}
	return code
}
