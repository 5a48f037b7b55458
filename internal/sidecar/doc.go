// Package sidecar implements the line-delimited JSON command protocol
// spoken over the sidecar's stdin and stdout.
//
// Each input line is one Command:
//
//	{"id":"1","func":"requestLLM","params":{"messages":[...]}}
//
// and produces exactly one Response line, in input order:
//
//	{"id":"1","success":true,"data":{...}}
//	{"id":"1","success":false,"error":"..."}
//
// Blank lines are skipped. A line that does not decode is answered with
// a freshly generated id.
package sidecar
