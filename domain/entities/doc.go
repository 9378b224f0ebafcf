// Package entities holds the values hosts exchange about native modules.
package entities
