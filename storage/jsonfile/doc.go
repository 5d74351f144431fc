// Package jsonfile implements storage.Ledger as a single JSON document.
//
// The file holds one object mapping fingerprint to original file name:
//
//	{
//	  "9f86d081884c7d65...": "report.pdf",
//	  "60303ae22b998861...": "notes.txt"
//	}
//
// Every Record rewrites the whole document through a temporary file that is
// synced and renamed over the original, so readers never observe a partial
// write. Only the fingerprint and name of a LedgerEntry are stored.
package jsonfile
