// Package dice serves dice.v1.DiceService over gRPC.
//
// Messages are google.protobuf.Struct values so the service needs no
// generated code. Field names follow the JSON API. Following the proto3 JSON
// mapping, 64-bit integers (totals, subtotals, modifiers) travel as decimal
// strings; die faces and group sizes are plain numbers.
package dice
