package paymentprovider

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
)

func testClient(validateURL string) *Client {
	return NewClient(config.PayFast{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  "jt7NOE43FZPn",
		ValidateURL: validateURL,
	})
}

func TestSignature_OrderAndEncoding(t *testing.T) {
	a := Form{{"merchant_id", "10000100"}, {"item_name", "10 credits"}, {"amount", "50.00"}}
	b := Form{{"amount", "50.00"}, {"merchant_id", "10000100"}, {"item_name", "10 credits"}}

	assert.Len(t, Signature(a, ""), 32)
	assert.NotEqual(t, Signature(a, ""), Signature(b, ""))
	assert.NotEqual(t, Signature(a, ""), Signature(a, "secret"))

	withEmpty := Form{{"merchant_id", "10000100"}, {"name_first", ""}, {"item_name", "10 credits"}, {"amount", "50.00"}}
	assert.Equal(t, Signature(a, "x"), Signature(withEmpty, "x"), "checkout signature skips empty fields")
}

func TestITNSignature_CountsEmptyFields(t *testing.T) {
	full := Form{{"m_payment_id", "p1"}, {"name_last", ""}, {"amount_gross", "50.00"}}
	dense := Form{{"m_payment_id", "p1"}, {"amount_gross", "50.00"}}
	assert.NotEqual(t, ITNSignature(full, "x"), ITNSignature(dense, "x"))

	assert.Equal(t, md5Hex("m_payment_id=p1&name_last=&amount_gross=50.00&passphrase=x"), ITNSignature(full, "x"))

	trailing := append(append(Form{}, full...), Field{"signature", "abc"}, Field{"extra", "1"})
	assert.Equal(t, ITNSignature(full, "x"), ITNSignature(trailing, "x"))
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestSignature_KnownValue(t *testing.T) {
	form := Form{{"amount", "5.00"}, {"item_name", "A B&C"}}
	assert.Equal(t, "d8ed731f6fc0087a7962724dec171297", Signature(form, "pass word"))
}

func TestParseForm_KeepsOrder(t *testing.T) {
	form, err := ParseForm("m_payment_id=p1&payment_status=COMPLETE&item_name=10+credits&amount_gross=50.00")
	require.NoError(t, err)
	assert.Equal(t, []string{"m_payment_id", "payment_status", "item_name", "amount_gross"}, form.Keys())
	assert.Equal(t, "10 credits", form.Get("item_name"))
}

func TestVerifyITN(t *testing.T) {
	c := testClient("")
	signed := c.Sign(Form{{"m_payment_id", "p1"}, {"payment_status", "COMPLETE"}, {"amount_gross", "50.00"}, {"merchant_id", "10000100"}})
	assert.NoError(t, c.VerifyITN(signed))

	tampered := append(Form{}, signed...)
	tampered[2].Value = "5000.00"
	assert.ErrorIs(t, c.VerifyITN(tampered), ErrBadSignature)

	other := NewClient(config.PayFast{MerchantID: "999", Passphrase: "jt7NOE43FZPn"})
	foreign := other.Sign(Form{{"m_payment_id", "p1"}, {"merchant_id", "999"}})
	assert.ErrorIs(t, c.VerifyITN(foreign), ErrBadMerchant)
}

func TestVerifyITN_EmptyFields(t *testing.T) {
	c := testClient("")
	body := "m_payment_id=p1&pf_payment_id=1089250&payment_status=COMPLETE&name_first=Sipho&name_last=" +
		"&custom_str2=&amount_gross=50.00&merchant_id=10000100"
	form, err := ParseForm(body)
	require.NoError(t, err)

	sig := md5Hex(body + "&passphrase=jt7NOE43FZPn")
	form = append(form, Field{"signature", sig})
	assert.NoError(t, c.VerifyITN(form))

	form[4].Value = "Dlamini"
	assert.ErrorIs(t, c.VerifyITN(form), ErrBadSignature)
}

func TestValidateITN(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		if got == "ok=1" {
			_, _ = w.Write([]byte("VALID"))
			return
		}
		_, _ = w.Write([]byte("INVALID"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	require.NoError(t, c.ValidateITN(context.Background(), "ok=1"))
	assert.Equal(t, "ok=1", got)
	assert.ErrorIs(t, c.ValidateITN(context.Background(), "ok=0"), ErrNotValid)
}
