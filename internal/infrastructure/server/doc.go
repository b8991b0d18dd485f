// Package server assembles the compiler, its placement source and the gin
// router from configuration, and runs the HTTP server.
package server
