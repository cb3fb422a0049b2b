package smc

import (
	"encoding/binary"
	"fmt"
)

// Layout of the parameter block the AppleSMC user client exchanges per call.
const (
	ParamBlockSize = 80
	// MaxDataSize is the capacity of the payload buffer.
	MaxDataSize = 32

	offKey            = 0
	offVersMajor      = 4
	offVersMinor      = 5
	offVersBuild      = 6
	offVersReserved   = 7
	offVersRelease    = 8
	offPLimitVersion  = 12
	offPLimitLength   = 14
	offPLimitCPU      = 16
	offPLimitGPU      = 20
	offPLimitMem      = 24
	offDataSize       = 28
	offDataType       = 32
	offDataAttributes = 36
	offResult         = 40
	offStatus         = 41
	offData8          = 42
	offData32         = 44
	offBytes          = 48
)

// User client method indexes.
const (
	methodUserClientOpen  = 0
	methodUserClientClose = 1
	methodHandleYPCEvent  = 2
)

// Selector is the sub-operation carried in the data8 field.
type Selector uint8

const (
	SelectorReadKey    Selector = 5
	SelectorWriteKey   Selector = 6
	SelectorGetKeyInfo Selector = 9
)

func (s Selector) String() string {
	switch s {
	case SelectorReadKey:
		return "ReadKey"
	case SelectorWriteKey:
		return "WriteKey"
	case SelectorGetKeyInfo:
		return "GetKeyInfo"
	default:
		return fmt.Sprintf("Selector(%d)", uint8(s))
	}
}

// Result is the controller's result code for one call.
type Result uint8

const (
	Success               Result = 0x00
	Failure               Result = 0x01
	CommCollision         Result = 0x80
	SpuriousData          Result = 0x81
	BadCommand            Result = 0x82
	BadParameter          Result = 0x83
	KeyNotFound           Result = 0x84
	KeyNotReadable        Result = 0x85
	KeyNotWritable        Result = 0x86
	KeySizeMismatch       Result = 0x87
	FramingError          Result = 0x88
	BadArgumentError      Result = 0x89
	TimeoutError          Result = 0xb7
	KeyIndexRangeError    Result = 0xb8
	BadFuncParameter      Result = 0xc0
	EventBufferWrongOrder Result = 0xc4
	EventBufferReadError  Result = 0xc5
	DeviceAccessError     Result = 0xc7
	UnsupportedFeature    Result = 0xcb
	SMBAccessError        Result = 0xcc
)

var resultNames = map[Result]string{
	Success:               "success",
	Failure:               "error",
	CommCollision:         "comm collision",
	SpuriousData:          "spurious data",
	BadCommand:            "bad command",
	BadParameter:          "bad parameter",
	KeyNotFound:           "key not found",
	KeyNotReadable:        "key not readable",
	KeyNotWritable:        "key not writable",
	KeySizeMismatch:       "key size mismatch",
	FramingError:          "framing error",
	BadArgumentError:      "bad argument",
	TimeoutError:          "timeout",
	KeyIndexRangeError:    "key index out of range",
	BadFuncParameter:      "bad function parameter",
	EventBufferWrongOrder: "event buffer wrong order",
	EventBufferReadError:  "event buffer read error",
	DeviceAccessError:     "device access error",
	UnsupportedFeature:    "unsupported feature",
	SMBAccessError:        "SMB access error",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("result 0x%02x", uint8(r))
}

// DataType is the controller's 4-character type code of a key, e.g. "ui8 " or "flt ".
type DataType uint32

func (d DataType) String() string {
	return Key(d).String()
}

// KeyInfo is the metadata returned by GetKeyInfo.
type KeyInfo struct {
	DataSize   uint32
	DataType   DataType
	Attributes uint8
}

// Version mirrors the vers field. Unused by key transactions.
type Version struct {
	Major    uint8
	Minor    uint8
	Build    uint8
	Reserved uint8
	Release  uint16
}

// PLimitData mirrors the pLimitData field. Unused by key transactions.
type PLimitData struct {
	Version   uint16
	Length    uint16
	CPUPLimit uint32
	GPUPLimit uint32
	MemPLimit uint32
}

// ParamBlock is one request or response exchanged with the controller.
type ParamBlock struct {
	Key        Key
	Vers       Version
	PLimitData PLimitData
	KeyInfo    KeyInfo
	Result     Result
	Status     uint8
	Selector   Selector
	Data32     uint32
	Bytes      [MaxDataSize]byte
}

// NewRequest returns a zero-filled block carrying only selector and key.
func NewRequest(sel Selector, key Key) ParamBlock {
	return ParamBlock{Selector: sel, Key: key}
}

// Payload returns the meaningful prefix of Bytes, as declared by KeyInfo.DataSize.
func (p *ParamBlock) Payload() []byte {
	n := p.KeyInfo.DataSize
	if n > MaxDataSize {
		n = MaxDataSize
	}
	return p.Bytes[:n]
}

// MarshalBinary encodes p into its 80-byte wire form.
func (p *ParamBlock) MarshalBinary() ([]byte, error) {
	b := make([]byte, ParamBlockSize)
	p.encode(b)
	return b, nil
}

func (p *ParamBlock) encode(b []byte) {
	le := binary.LittleEndian

	le.PutUint32(b[offKey:], uint32(p.Key))

	b[offVersMajor] = p.Vers.Major
	b[offVersMinor] = p.Vers.Minor
	b[offVersBuild] = p.Vers.Build
	b[offVersReserved] = p.Vers.Reserved
	le.PutUint16(b[offVersRelease:], p.Vers.Release)

	le.PutUint16(b[offPLimitVersion:], p.PLimitData.Version)
	le.PutUint16(b[offPLimitLength:], p.PLimitData.Length)
	le.PutUint32(b[offPLimitCPU:], p.PLimitData.CPUPLimit)
	le.PutUint32(b[offPLimitGPU:], p.PLimitData.GPUPLimit)
	le.PutUint32(b[offPLimitMem:], p.PLimitData.MemPLimit)

	le.PutUint32(b[offDataSize:], p.KeyInfo.DataSize)
	le.PutUint32(b[offDataType:], uint32(p.KeyInfo.DataType))
	b[offDataAttributes] = p.KeyInfo.Attributes

	b[offResult] = uint8(p.Result)
	b[offStatus] = p.Status
	b[offData8] = uint8(p.Selector)
	le.PutUint32(b[offData32:], p.Data32)

	copy(b[offBytes:offBytes+MaxDataSize], p.Bytes[:])
}

// UnmarshalBinary decodes an 80-byte block. Any other length is a malformed
// response.
func (p *ParamBlock) UnmarshalBinary(b []byte) error {
	if len(b) != ParamBlockSize {
		return &Error{
			Kind: InternalError,
			Op:   "decode param block",
			Err:  fmt.Errorf("got %d bytes, want %d", len(b), ParamBlockSize),
		}
	}

	le := binary.LittleEndian

	*p = ParamBlock{
		Key: Key(le.Uint32(b[offKey:])),
		Vers: Version{
			Major:    b[offVersMajor],
			Minor:    b[offVersMinor],
			Build:    b[offVersBuild],
			Reserved: b[offVersReserved],
			Release:  le.Uint16(b[offVersRelease:]),
		},
		PLimitData: PLimitData{
			Version:   le.Uint16(b[offPLimitVersion:]),
			Length:    le.Uint16(b[offPLimitLength:]),
			CPUPLimit: le.Uint32(b[offPLimitCPU:]),
			GPUPLimit: le.Uint32(b[offPLimitGPU:]),
			MemPLimit: le.Uint32(b[offPLimitMem:]),
		},
		KeyInfo: KeyInfo{
			DataSize:   le.Uint32(b[offDataSize:]),
			DataType:   DataType(le.Uint32(b[offDataType:])),
			Attributes: b[offDataAttributes],
		},
		Result:   Result(b[offResult]),
		Status:   b[offStatus],
		Selector: Selector(b[offData8]),
		Data32:   le.Uint32(b[offData32:]),
	}
	copy(p.Bytes[:], b[offBytes:offBytes+MaxDataSize])

	return nil
}
