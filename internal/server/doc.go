// Package server implements the tag bridge daemon.
//
// An NFC reader process (the bridge) connects to GET /tag over websocket
// and exchanges JSON messages with the daemon:
//
//	bridge -> daemon  {"type":"read","uri":"nfcprofile://<key>"}
//	daemon -> bridge  {"type":"transition","key":"<key>","name":"Night","action":"applied"}
//	daemon -> bridge  {"type":"write","id":"<id>","payload":"<base64>"}
//	bridge -> daemon  {"type":"write_result","id":"<id>","ok":true}
//
// Reads are handed to the tracker, which applies or restores the profile.
// Writes are requested through POST /write?key=<key> or Server.WriteTag;
// they go to the most recently connected bridge and complete when its
// write_result arrives. A bridge that disconnects fails its pending writes.
//
// The connection keeps itself alive with websocket pings every 54 seconds
// and drops peers that miss a pong for 60 seconds.
package server
