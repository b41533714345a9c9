// Package daemonctl starts and stops a background puppetmask daemon: it
// launches `puppetmask serve` detached, waits for the API to answer, and
// stops the process recorded in the pid file.
package daemonctl
