package abi

// The i386 System V ABI aligns int64_t to 4 inside structs.
const int64Align = 4
