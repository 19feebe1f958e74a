// Package policy contains the command sources that drive a car:
//
//  1. Fixed sequences (Scripted, Loop)
//  2. Uniform random commands (Random)
//  3. Model-driven commands (ModelPolicy) using the model package, with an
//     Instruction rendered against the car's observation
//
// Every policy implements core.Policy. A policy that runs out of commands
// returns core.ErrPolicyExhausted, which runners treat as normal completion.
package policy
