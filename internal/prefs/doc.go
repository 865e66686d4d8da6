// Package prefs implements named key/value preference stores.
//
// A Store holds typed values (string, int32, int64, bool, float32) under
// string keys and is edited through an Editor that batches changes and
// commits them atomically with Apply. Stores are obtained from a Provider:
//
//	db, err := prefs.Open(dataDir)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	defaults := prefs.Default(db)
//	err = defaults.Edit().
//	    PutString("current_profile", key).
//	    PutLong("_last_change", time.Now().UnixMilli()).
//	    Apply()
//
// Two providers exist: DB persists every store in a single badger database,
// Memory keeps them in process and is used by tests.
package prefs
