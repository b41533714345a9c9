// Package daemonrun hosts the foreground daemon runtime shared by
// `puppetmask serve` and the puppetmaskd binary: logger setup, pid file,
// bucket construction and the daemon lifecycle.
package daemonrun
