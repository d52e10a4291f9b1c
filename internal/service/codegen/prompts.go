package codegen

import "fmt"

const characterTemplate = `You are a C++ expert for Unreal Engine 4.27.

Generate a complete ACharacter subclass for a character named %s.

Traits for this character:
%s

Requirements:
1. Use proper UCLASS and UPROPERTY macros
2. Include input mapping (WASD movement, Space for action)
3. Include a method: void ProcessConsciousnessDecision(const FString& Decision);
4. Include trait variables that can be modified from C++
5. Proper constructor and BeginPlay implementation

Provide:
- Header file (.h) content
- Source file (.cpp) content

Format as JSON with keys: "header_file", "source_file"
`

const systemTemplate = `You are a C++ expert for Unreal Engine 4.27.

Generate a complete system for: %s
Description: %s

Create:
1. A manager/coordinator class
2. Necessary structs/enums for the system
3. Methods for core functionality

Provide:
- Header file (.h) content
- Source file (.cpp) content

Format as JSON with keys: "header_file", "source_file"
`

func characterPrompt(name, traits string) string {
	return fmt.Sprintf(characterTemplate, name, traits)
}

func systemPrompt(system, description string) string {
	return fmt.Sprintf(systemTemplate, system, description)
}
