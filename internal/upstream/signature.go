package upstream

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Credentials identify this integration to the upstream
type Credentials struct {
	AppKey  string
	AppCode string
}

// Arg is a single named argument of a method call
type Arg struct {
	Key   string
	Value string
}

// Args is an ordered argument list. Order is part of the signature.
type Args []Arg

// Keys returns the argument keys in call order
func (a Args) Keys() []string {
	keys := make([]string, len(a))
	for i, arg := range a {
		keys[i] = arg.Key
	}
	return keys
}

// Get returns the value of the first argument named key
func (a Args) Get(key string) (string, bool) {
	for _, arg := range a {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return "", false
}

// Sign computes the request signature for method and args.
//
// The digest is the hex SHA-256 of
//
//	{method}/{appKey}/method_name={method}{appCode}:{k1}={v1}&{appCode}:{k2}={v2}...
//
// with no separator before the first argument.
func Sign(creds Credentials, method string, args Args) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte('/')
	b.WriteString(creds.AppKey)
	b.WriteString("/method_name=")
	b.WriteString(method)

	for i, arg := range args {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(creds.AppCode)
		b.WriteByte(':')
		b.WriteString(arg.Key)
		b.WriteByte('=')
		b.WriteString(arg.Value)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
