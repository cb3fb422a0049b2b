package smc

/*
#cgo LDFLAGS: -framework IOKit

#include <IOKit/IOKitLib.h>
#include <mach/mach.h>

static kern_return_t smc_open(io_connect_t *conn, uint32_t openMethod) {
    io_service_t svc = IOServiceGetMatchingService(MACH_PORT_NULL, IOServiceMatching("AppleSMC"));
    if (svc == IO_OBJECT_NULL) {
        return kIOReturnNotFound;
    }

    kern_return_t kr = IOServiceOpen(svc, mach_task_self(), 1, conn);
    IOObjectRelease(svc);
    if (kr != KERN_SUCCESS) {
        *conn = IO_OBJECT_NULL;
        return kr;
    }
    if (*conn == IO_OBJECT_NULL) {
        return kIOReturnError;
    }

    kr = IOConnectCallMethod(*conn, openMethod, NULL, 0, NULL, 0, NULL, NULL, NULL, NULL);
    if (kr != KERN_SUCCESS) {
        IOServiceClose(*conn);
        *conn = IO_OBJECT_NULL;
    }
    return kr;
}

static kern_return_t smc_call(io_connect_t conn, uint32_t method, const void *in, size_t inSize, void *out, size_t *outSize) {
    return IOConnectCallStructMethod(conn, method, in, inSize, out, outSize);
}

static kern_return_t smc_close(io_connect_t conn, uint32_t closeMethod) {
    IOConnectCallMethod(conn, closeMethod, NULL, 0, NULL, 0, NULL, NULL, NULL, NULL);
    return IOServiceClose(conn);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// IOKitChannel opens sessions on the AppleSMC user client.
type IOKitChannel struct{}

// NewIOKitChannel returns a channel to the AppleSMC service.
func NewIOKitChannel() Channel {
	return IOKitChannel{}
}

// Open implements Channel.
func (IOKitChannel) Open() (Session, error) {
	var conn C.io_connect_t
	if kr := C.smc_open(&conn, methodUserClientOpen); kr != C.KERN_SUCCESS {
		return nil, kernError("open", 0, kr)
	}
	return &iokitSession{conn: conn}, nil
}

type iokitSession struct {
	conn C.io_connect_t
}

func (s *iokitSession) Call(in ParamBlock) (ParamBlock, error) {
	if s.conn == 0 {
		return ParamBlock{}, &Error{Kind: ChannelError, Op: "call", Key: in.Key, Err: errSessionClosed}
	}

	var inBuf, outBuf [ParamBlockSize]byte
	in.encode(inBuf[:])
	outSize := C.size_t(len(outBuf))

	kr := C.smc_call(
		s.conn,
		methodHandleYPCEvent,
		unsafe.Pointer(&inBuf[0]),
		C.size_t(len(inBuf)),
		unsafe.Pointer(&outBuf[0]),
		&outSize,
	)
	if kr != C.KERN_SUCCESS {
		return ParamBlock{}, kernError("call", in.Key, kr)
	}

	var out ParamBlock
	if err := out.UnmarshalBinary(outBuf[:outSize]); err != nil {
		return ParamBlock{}, err
	}
	return out, nil
}

func (s *iokitSession) Close() error {
	if s.conn == 0 {
		return nil
	}
	kr := C.smc_close(s.conn, methodUserClientClose)
	s.conn = 0
	if kr != C.KERN_SUCCESS {
		return kernError("close", 0, kr)
	}
	return nil
}

// kernReturnNames covers the IOReturn codes the AppleSMC user client is
// known to produce.
var kernReturnNames = map[uint32]string{
	0xe00002bc: "kIOReturnError",
	0xe00002bd: "kIOReturnNoMemory",
	0xe00002be: "kIOReturnNoResources",
	0xe00002c0: "kIOReturnNoDevice",
	0xe00002c1: "kIOReturnNotPrivileged",
	0xe00002c2: "kIOReturnBadArgument",
	0xe00002c5: "kIOReturnExclusiveAccess",
	0xe00002c7: "kIOReturnUnsupported",
	0xe00002cd: "kIOReturnNotOpen",
	0xe00002d8: "kIOReturnNotReady",
	0xe00002e2: "kIOReturnNotPermitted",
	0xe00002f0: "kIOReturnNotFound",
}

func kernError(op string, key Key, kr C.kern_return_t) error {
	code := uint32(kr)
	name, ok := kernReturnNames[code]
	if !ok {
		name = "kern_return_t"
	}
	return &Error{Kind: ChannelError, Op: op, Key: key, Err: fmt.Errorf("%s (0x%08x)", name, code)}
}
