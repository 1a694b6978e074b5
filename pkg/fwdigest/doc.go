// Package fwdigest decodes firewall threat and event log lines into typed
// records.
//
// Quick start:
//
//	d, err := fwdigest.New(fwdigest.WithCatalogFile("events.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rec, _ := d.DecodeThreat("FW01: [Rule1] Blocked: Malware HTTP 10.0.0.5:443 -> 93.184.216.34|Malware detected|jdoe|HIGH|Web")
//	fmt.Println(rec.Severity, rec.Src) // HIGH 10.0.0.5:443
//
// A Decoder is safe for concurrent use and never performs I/O after New.
package fwdigest
