// Package model contains the storefront domain models.
//
// Models carry no database-specific dependencies; persistence mapping lives in
// the store implementations.
package model
