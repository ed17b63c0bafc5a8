// Package contentanalysisservice contains the Warden spam/scam decision
// engine for whispers.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package contentanalysisservice
