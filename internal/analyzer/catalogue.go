package analyzer

// Catalogue order is the ranking. Specific causes come before generic ones.
var defaultRules = []Rule{
	{
		ID:       "fabric-solution",
		Keywords: solutionMarkers,
		Reason:   Dynamic(fabricSolution),
	},
	{
		ID:       "mod-crash",
		Keywords: []string{modCrashMarker},
		Reason:   Dynamic(modCrash),
	},
	{
		ID:       "mixin-apply",
		Keywords: []string{mixinMarker},
		Reason:   Dynamic(mixinFailure),
	},
	{
		ID:       "duplicate-key",
		Keywords: []string{duplicateMarker},
		Reason:   Dynamic(duplicateKey),
	},
	{
		ID:       "config-load",
		Keywords: []string{configMarker},
		Reason:   Dynamic(configFailure),
	},
	{
		ID:       "out-of-memory",
		Keywords: []string{"java.lang.OutOfMemoryError", "Out of memory error"},
		Reason: Static("The game ran out of memory. Raise the memory allocated to the game in the launcher " +
			"settings, or remove heavy mods and resource packs."),
	},
	{
		ID:       "heap-reservation",
		Keywords: []string{"Could not reserve enough space for object heap", "Invalid maximum heap size"},
		Reason: Static("The Java runtime could not reserve the requested heap. Lower the memory allocation " +
			"so it fits in the device's free RAM."),
	},
	{
		ID: "java-class-version",
		Keywords: []string{
			"java.lang.UnsupportedClassVersionError",
			"has been compiled by a more recent version of the Java Runtime",
		},
		Reason: Static("A mod or the game needs a newer Java version than the selected runtime. " +
			"Switch to Java 17 or newer for Minecraft 1.18 and later, Java 21 for 1.20.5 and later."),
	},
	{
		ID:       "openj9",
		Keywords: []string{"Open J9 is not supported", "OpenJ9 is incompatible"},
		Reason:   Static("The OpenJ9 Java runtime is not supported. Switch to a HotSpot based runtime such as OpenJDK."),
	},
	{
		ID:       "optifine-fabric",
		Keywords: []string{"OptiFine", "net.fabricmc.loader"},
		Logic:    AllOf,
		Reason: Static("OptiFine is installed on Fabric. OptiFine does not support Fabric; remove it and " +
			"use Sodium with Iris instead."),
	},
	{
		ID:       "lwjgl-natives",
		Keywords: []string{"java.lang.UnsatisfiedLinkError", "lwjgl"},
		Logic:    AllOf,
		Reason: Static("LWJGL native libraries failed to load. Reinstall the game version or switch to a " +
			"launcher build that matches the device architecture."),
	},
	{
		ID: "opengl-context",
		Keywords: []string{
			"No OpenGL context found in the current thread",
			"GLFW error 65542",
			"Pixel format not accelerated",
		},
		Reason: Static("No usable OpenGL context could be created. Try a different renderer in the launcher settings."),
	},
	{
		ID:       "gpu-driver",
		Keywords: []string{accessViolation},
		Reason:   Dynamic(gpuDriver),
	},
	{
		ID:       "disk-full",
		Keywords: []string{"No space left on device", "There is not enough space on the disk"},
		Reason:   Static("The device storage is full. Free some space and launch the game again."),
	},
	{
		ID:       "main-thread-exception",
		Keywords: []string{mainThreadMarker},
		Reason:   Dynamic(mainThreadException),
	},
}

// DefaultRules returns the built-in catalogue in ranking order
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}
