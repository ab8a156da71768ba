// Package shared holds helpers used by more than one layer of revpulse.
//
// The testutil subpackage provides a capturing slog handler and fixture
// builders for transaction exports, so that package tests can assert on
// log output and build CSV inputs without repeating boilerplate:
//
//	func TestLoad(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    dir := t.TempDir()
//	    testutil.WriteFile(t, dir, "berko.jun.25.csv", testutil.TransactionCSV(
//	        testutil.Row{"01/06/2025", "PT Session", "1", "50.00"},
//	    ))
//	    // ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing here carries business logic.
package shared
