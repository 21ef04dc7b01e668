// Package compiler turns authored processes into checked IR.
//
// CompileProcess and LoadProcesses read processes written in CUE. Validate
// reports the errors that block generation, Lint the warnings that do not.
package compiler
