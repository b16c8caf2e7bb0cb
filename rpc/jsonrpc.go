// Package rpc implements the JSON-RPC 2.0 dispatcher boundary spec §6
// names: a method table that reaches into the state provider, chain
// reader, transaction pool, and block producer the rest of this module
// builds, plus a websocket endpoint for the subscription surface. The
// transport layer itself (exact HTTP framing, auth, rate limiting) is
// explicitly out of scope — this package implements the seam (C)/(D)/(E)
// expose, not a production-hardened gateway.
//
// Grounded on the teacher's chi+cors HTTP stack idiom (DESIGN.md records
// the wiring decision) and the spec §6 method table / §7 error taxonomy.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Request is a single JSON-RPC 2.0 call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a single JSON-RPC 2.0 reply; exactly one of Result/Error is
// set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object. Code follows the canonical StarkNet
// error codes (spec §6) for application errors, or the standard JSON-RPC
// reserved range for transport-level failures (parse error, method not
// found, invalid params).
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

// Standard JSON-RPC 2.0 transport error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Canonical StarkNet application error codes (spec §6).
const (
	ErrFailedToReceive                 = 1
	ErrContractNotFound                = 20
	ErrBlockNotFound                   = 24
	ErrClassHashNotFound               = 28
	ErrTxnHashNotFound                 = 29
	ErrInvalidContractClass            = 50
	ErrClassAlreadyDeclared            = 51
	ErrInsufficientAccountBalance      = 54
	ErrContractClassSizeTooLarge       = 57
	ErrDuplicateTransaction            = 59
	ErrCompiledClassHashMismatch       = 60
	ErrUnsupportedTxnVersion           = 61
	ErrUnsupportedContractClassVersion = 62
	ErrReplacementTxnUnderpriced       = 64
	ErrFeeBelowMinimum                 = 65
)

func newError(code int, message string) *Error { return &Error{Code: code, Message: message} }

// methodHandler is the shape every registered RPC method implements:
// decode params itself (since each method's param shape differs), return
// a JSON-serializable result or an *Error.
type methodHandler func(params json.RawMessage) (interface{}, *Error)

// dispatch looks up and invokes the handler for req.Method, always
// returning a well-formed Response (never panicking the caller, since a
// malformed request must produce a JSON-RPC error reply, not a dropped
// connection).
func (s *Server) dispatch(req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}

	handler, ok := s.methods[req.Method]
	if !ok {
		resp.Error = newError(codeMethodNotFound, "method not found: "+req.Method)
		return resp
	}

	result, rpcErr := s.callWithRecover(handler, req.Params)
	if rpcErr != nil {
		resp.Error = rpcErr
		return resp
	}
	resp.Result = result
	return resp
}

func (s *Server) callWithRecover(h methodHandler, params json.RawMessage) (result interface{}, rpcErr *Error) {
	defer func() {
		if r := recover(); r != nil {
			rpcErr = newError(codeInternalError, fmt.Sprintf("internal error: %v", r))
		}
	}()
	return h(params)
}
