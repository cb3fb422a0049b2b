package smc

import (
	"github.com/sirupsen/logrus"
)

// A transaction is one or two round trips on a single session:
// GetKeyInfo resolves the key's data size, then ReadKey or WriteKey moves
// the data using exactly that size. Any failure ends the transaction; there
// is no retry at this layer.

func call(sess Session, op string, in ParamBlock) (ParamBlock, error) {
	logrus.WithFields(logrus.Fields{
		"key":      in.Key,
		"selector": in.Selector,
		"dataSize": in.KeyInfo.DataSize,
	}).Trace("Submitting SMC call")

	out, err := sess.Call(in)
	if err != nil {
		if _, ok := KindOf(err); ok {
			return out, err
		}
		return out, &Error{Kind: ChannelError, Op: op, Key: in.Key, Err: err}
	}

	if out.Result != Success {
		return out, resultError(op, in.Key, out.Result)
	}

	return out, nil
}

func getKeyInfo(sess Session, key Key) (KeyInfo, error) {
	if key.IsZero() {
		return KeyInfo{}, &Error{Kind: InvalidArgument, Op: "get key info", Key: key}
	}

	out, err := call(sess, "get key info", NewRequest(SelectorGetKeyInfo, key))
	if err != nil {
		return KeyInfo{}, err
	}

	if out.KeyInfo.DataSize > MaxDataSize {
		return KeyInfo{}, &Error{Kind: InternalError, Op: "get key info", Key: key, Err: errDataSizeTooLarge(out.KeyInfo.DataSize)}
	}

	return out.KeyInfo, nil
}

// readKey reads at most maxLen bytes of key. The returned slice holds the
// clamped length min(maxLen, dataSize).
func readKey(sess Session, policies PolicyTable, key Key, maxLen int) ([]byte, KeyInfo, error) {
	if key.IsZero() || maxLen < 0 {
		return nil, KeyInfo{}, &Error{Kind: InvalidArgument, Op: "read key", Key: key}
	}

	info, err := getKeyInfo(sess, key)
	if err != nil {
		return nil, KeyInfo{}, err
	}

	in := NewRequest(SelectorReadKey, key)
	in.KeyInfo.DataSize = info.DataSize

	out, err := call(sess, "read key", in)
	if err != nil {
		return nil, info, err
	}

	n := int(info.DataSize)
	if maxLen < n {
		n = maxLen
	}

	buf := make([]byte, n)
	switch policies.Lookup(key) {
	case NoSwap:
		copy(buf, out.Bytes[:n])
	default:
		for i := 0; i < n; i++ {
			buf[i] = out.Bytes[n-1-i]
		}
	}

	return buf, info, nil
}

// writeKey writes data to key verbatim. At most min(len(data), MaxDataSize,
// dataSize) bytes are transmitted.
func writeKey(sess Session, key Key, data []byte) (KeyInfo, error) {
	if key.IsZero() || data == nil {
		return KeyInfo{}, &Error{Kind: InvalidArgument, Op: "write key", Key: key}
	}

	info, err := getKeyInfo(sess, key)
	if err != nil {
		return KeyInfo{}, err
	}

	in := NewRequest(SelectorWriteKey, key)
	in.KeyInfo.DataSize = info.DataSize

	n := len(data)
	if n > MaxDataSize {
		n = MaxDataSize
	}
	if n > int(info.DataSize) {
		n = int(info.DataSize)
	}
	copy(in.Bytes[:n], data[:n])

	if _, err := call(sess, "write key", in); err != nil {
		return info, err
	}

	return info, nil
}
