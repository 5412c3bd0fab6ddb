// Package toolchain resolves the Python interpreter driving the build.
//
// Policy, in order: the local virtual-environment interpreter when it
// exists and is executable, the first configured candidate found on the
// search path, and finally the literal "python" token so a missing
// interpreter fails at invocation time rather than here.
package toolchain
