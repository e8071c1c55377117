// Package testsupport builds configurations and media fixtures for tests.
package testsupport
