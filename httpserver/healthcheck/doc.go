/*
Package healthcheck contains a simple healthcheck handler. In addition to supporting the
health checks registered on the system (such as the mongo connection pings), it also allows access to the Go
runtime's standard pprof functionality.
*/
package healthcheck
