// Package model defines the record types shared across the logsift engine.
package model
