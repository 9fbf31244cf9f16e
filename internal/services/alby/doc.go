// Package alby reads the campaign wallet balance from the Alby API. In
// wallet mode the monitor treats the balance as the live donation total
// instead of scraping a campaign page.
package alby
