//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Crawl fetches and normalizes the configured author into a crawl snapshot.
func Crawl() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "crawl")
}

// Publish analyzes the latest crawl snapshot and writes the artifact bundle.
func Publish() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "write")
}

// Verify checks the published bundle and fails when it needs work.
func Verify() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "verify")
}

// Usage prints this month's SerpAPI request count from the ledger.
func Usage() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "usage")
}
