//go:build !386

package abi

// int64_t is 8-aligned inside C structs here. On arm, mips and mipsle this
// differs from Go, which aligns int64 to 4.
const int64Align = 8
