package main

// _version is the version of notahint.
// Overridden at release time with -ldflags.
var _version = "v0.1.0-dev"
