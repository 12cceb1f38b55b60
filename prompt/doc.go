// Package prompt holds the instruction templates the agents drive models
// with. The marker conventions these templates teach the model (`Action:`,
// `Final Answer:`, plan lists, the SATISFACTORY critique marker) are the
// other half of the contract implemented by the action package: a change to
// either side requires a matching change to the other.
//
// Templates use text/template syntax. Callers may supply their own system
// prompt template; the default for each agent type lives here.
package prompt
