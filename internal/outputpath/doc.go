// Package outputpath resolves where a project build writes its intermediate,
// compilation and runtime outputs, and which files the compiler is expected to
// produce there.
//
// Resolution is a pure function of its request: the same request always yields
// the same Location. Every directory in a Location is absolute, cleaned and
// terminated by exactly one path separator, so joining a file name onto it is
// unambiguous.
//
// Example:
//
//	loc, err := outputpath.Resolve(outputpath.Request{
//	    ProjectDir:    "/src/App",
//	    ProjectName:   "App",
//	    Env:           env,
//	    Configuration: "Debug",
//	})
//	// loc.CompilationDir == "/src/App/bin/Debug/netcoreapp1.0/"
package outputpath
