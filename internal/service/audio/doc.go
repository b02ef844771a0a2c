// Package audio plays the short tone that accompanies a fired alarm.
package audio
