// Package environment names the deployment environments a process can run in.
package environment
